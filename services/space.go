package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartspace/smartspace-be/models"
)

type SpaceService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSpaceService(db *gorm.DB, logger *zap.Logger) *SpaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpaceService{db: db, logger: logger}
}

type CreateSpaceInput struct {
	Name         string
	Location     string
	Capacity     int
	Description  string
	Equipment    string
	Features     string
	PricePerHour float64
	OrganizerID  *uint
}

func (s *SpaceService) CreateSpace(ctx context.Context, in CreateSpaceInput) (*models.Space, error) {
	if in.Capacity <= 0 {
		return nil, &ValidationError{Field: "capacity", Message: "capacity must be positive"}
	}
	if in.PricePerHour < 0 {
		return nil, &ValidationError{Field: "price_per_hour", Message: "price per hour cannot be negative"}
	}

	space := models.Space{
		Name:         in.Name,
		Location:     in.Location,
		Capacity:     in.Capacity,
		Description:  in.Description,
		Equipment:    in.Equipment,
		Features:     in.Features,
		PricePerHour: in.PricePerHour,
		Status:       models.SpaceFree,
		OrganizerID:  in.OrganizerID,
	}
	if err := s.db.WithContext(ctx).Create(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

func (s *SpaceService) GetSpace(ctx context.Context, id uint) (*models.Space, error) {
	var space models.Space
	if err := s.db.WithContext(ctx).First(&space, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("space %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &space, nil
}

func (s *SpaceService) ListSpaces(ctx context.Context) ([]models.Space, error) {
	var spaces []models.Space
	err := s.db.WithContext(ctx).Order("name ASC").Find(&spaces).Error
	return spaces, err
}

// SetSpaceStatus flips the coarse availability flag. Operators use this
// to take a space out of rotation; the sweeper and the approval flow call
// it through the job queue.
func (s *SpaceService) SetSpaceStatus(ctx context.Context, id uint, status models.SpaceStatus) error {
	if status != models.SpaceFree && status != models.SpaceBooked {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown space status %q", status)}
	}

	res := s.db.WithContext(ctx).Model(&models.Space{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("space %d: %w", id, ErrNotFound)
	}
	return nil
}
