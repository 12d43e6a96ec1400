package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartspace/smartspace-be/models"
)

// SweeperService reconciles the derived space availability flag with the
// authoritative event records: confirmed events whose end time has passed
// are marked completed, and their space is freed when no other confirmed
// event still holds it. Running it twice with no intervening writes is a
// no-op.
type SweeperService struct {
	db       *gorm.DB
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// SweepResult reports what a single sweep changed.
type SweepResult struct {
	CompletedCount  int `json:"completed_count"`
	FreedSpaceCount int `json:"freed_space_count"`
	FailedCount     int `json:"failed_count"`
}

func NewSweeperService(db *gorm.DB, interval time.Duration, logger *zap.Logger) *SweeperService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweeperService{
		db:       db,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Sweep processes every confirmed event that ended before now. Each event
// runs in its own transaction so one failure never aborts the rest of the
// batch; failures are logged and counted separately.
func (s *SweeperService) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	var ended []models.Event
	err := s.db.WithContext(ctx).
		Where("status = ? AND end_datetime < ?", models.StatusConfirmed, now).
		Find(&ended).Error
	if err != nil {
		return result, err
	}

	for i := range ended {
		event := &ended[i]
		if err := s.completeEvent(ctx, event, now, &result); err != nil {
			result.FailedCount++
			s.logger.Warn("sweep item failed",
				zap.Uint("event_id", event.ID),
				zap.Uint("space_id", event.SpaceID),
				zap.Error(err))
		}
	}

	if result.CompletedCount > 0 || result.FreedSpaceCount > 0 {
		s.logger.Info("sweep finished",
			zap.Int("completed", result.CompletedCount),
			zap.Int("freed_spaces", result.FreedSpaceCount),
			zap.Int("failed", result.FailedCount))
	}
	return result, nil
}

func (s *SweeperService) completeEvent(ctx context.Context, event *models.Event, now time.Time, result *SweepResult) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := hasActiveConfirmed(tx, event.SpaceID, now, event.ID)
		if err != nil {
			return err
		}
		if !active {
			res := tx.Model(&models.Space{}).
				Where("id = ? AND status <> ?", event.SpaceID, models.SpaceFree).
				Update("status", models.SpaceFree)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				result.FreedSpaceCount++
			}
		}

		if err := tx.Model(event).Update("status", models.StatusCompleted).Error; err != nil {
			return err
		}
		result.CompletedCount++
		return nil
	})
}

// Run executes sweeps on a fixed schedule until ctx is cancelled. Sweeps
// run serially on the ticker goroutine, so an instance never overlaps
// itself.
func (s *SweeperService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, s.now()); err != nil {
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}
