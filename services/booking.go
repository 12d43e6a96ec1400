package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartspace/smartspace-be/models"
)

// BookingService owns the booking lifecycle: request, approval, rejection
// and cancellation. The overlap check and the insert run inside one
// transaction so two simultaneous requests for overlapping intervals
// cannot both succeed; the database-level exclusion constraint is the
// backstop for anything the application check cannot see.
type BookingService struct {
	db       *gorm.DB
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(db *gorm.DB, notifier Notifier, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		db:       db,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// BookingRequest carries the validated input for a new booking.
type BookingRequest struct {
	SpaceID           uint
	EventName         string
	StartDatetime     time.Time
	EndDatetime       time.Time
	OrganizerName     string
	OrganizerEmail    string
	EventType         models.EventType
	Attendance        *int
	RequiredResources string
}

// RequestBooking validates the requested interval, checks the space's
// coarse availability flag and the overlap invariant against pending and
// confirmed events, then persists the event as pending. Notifications go
// out after the transaction commits and never affect the outcome.
func (s *BookingService) RequestBooking(ctx context.Context, user *models.User, req BookingRequest) (*models.Event, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	var event models.Event
	var space models.Space
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&space, req.SpaceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("space %d: %w", req.SpaceID, ErrNotFound)
			}
			return err
		}

		// Coarse gate on the space flag. This is distinct from the
		// interval check: a booked space rejects all requests outright.
		if space.Status != models.SpaceFree {
			return &ConflictError{
				Message: fmt.Sprintf("space %q is currently %s", space.Name, space.Status),
			}
		}

		conflict, err := s.findConflict(tx, req.SpaceID, req.StartDatetime, req.EndDatetime, models.BlockingStatuses, 0)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{Message: "space already booked for this time", Event: conflict}
		}

		event = models.Event{
			EventName:         req.EventName,
			StartDatetime:     req.StartDatetime,
			EndDatetime:       req.EndDatetime,
			OrganizerName:     req.OrganizerName,
			OrganizerEmail:    req.OrganizerEmail,
			EventType:         req.EventType,
			Attendance:        req.Attendance,
			RequiredResources: req.RequiredResources,
			Status:            models.StatusPending,
			UserID:            user.ID,
			SpaceID:           space.ID,
		}
		// The space stays free until an admin confirms; pending requests
		// do not reserve the slot exclusively.
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BookingSubmitted(ctx, &event, &space, user)
	}
	return &event, nil
}

func (s *BookingService) validateRequest(req BookingRequest) error {
	if !req.StartDatetime.Before(req.EndDatetime) {
		return &ValidationError{Field: "end_datetime", Message: "end datetime must be after start datetime"}
	}
	if req.StartDatetime.Before(s.now()) {
		return &ValidationError{Field: "start_datetime", Message: "start datetime cannot be in the past"}
	}
	if !req.EventType.IsValid() {
		return &ValidationError{Field: "event_type", Message: fmt.Sprintf("unknown event type %q", req.EventType)}
	}
	if req.Attendance != nil && *req.Attendance < 0 {
		return &ValidationError{Field: "attendance", Message: "attendance cannot be negative"}
	}
	return nil
}

// findConflict returns the first event on the space whose interval
// overlaps [start, end) and whose status is in statuses, or nil when the
// slot is clear. Half-open semantics: a booking ending at T and one
// starting at T do not conflict.
func (s *BookingService) findConflict(tx *gorm.DB, spaceID uint, start, end time.Time, statuses []models.EventStatus, excludeID uint) (*models.Event, error) {
	query := tx.Where("space_id = ? AND status IN ? AND start_datetime < ? AND end_datetime > ?",
		spaceID, statuses, end, start)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var conflict models.Event
	err := query.Order("start_datetime ASC").First(&conflict).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

// hasActiveConfirmed reports whether any confirmed event on the space,
// other than excludeID, still ends in the future. The space flag should
// stay booked exactly as long as this holds.
func hasActiveConfirmed(tx *gorm.DB, spaceID uint, now time.Time, excludeID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Event{}).
		Where("space_id = ? AND status = ? AND end_datetime > ? AND id <> ?",
			spaceID, models.StatusConfirmed, now, excludeID).
		Count(&count).Error
	return count > 0, err
}

// ApproveEvent confirms a pending event. The conflict check runs again
// here to guard against races between request time and approval time.
// The space's booked flag is updated asynchronously; the caller gets the
// confirmed event back immediately.
func (s *BookingService) ApproveEvent(ctx context.Context, eventID, adminID uint) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Space").Preload("User").First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
			}
			return err
		}

		if event.Status != models.StatusPending {
			return &InvalidTransitionError{From: event.Status, To: models.StatusConfirmed}
		}

		conflict, err := s.findConflict(tx, event.SpaceID, event.StartDatetime, event.EndDatetime,
			[]models.EventStatus{models.StatusConfirmed}, event.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{Message: "space already booked for this time", Event: conflict}
		}

		now := s.now()
		event.Status = models.StatusConfirmed
		event.ApprovedBy = &adminID
		event.ApprovedAt = &now
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ScheduleSpaceStatus(ctx, event.ID, event.SpaceID, models.SpaceBooked)
		s.notifier.BookingApproved(ctx, &event, &event.Space, &event.User)
	}
	return &event, nil
}

// RejectEvent moves a pending event to rejected and notifies the requester.
func (s *BookingService) RejectEvent(ctx context.Context, eventID, adminID uint) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Space").Preload("User").First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
			}
			return err
		}

		if !event.Status.CanTransitionTo(models.StatusRejected) {
			return &InvalidTransitionError{From: event.Status, To: models.StatusRejected}
		}

		event.Status = models.StatusRejected
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BookingRejected(ctx, &event, &event.Space, &event.User)
	}
	return &event, nil
}

// CancelEvent cancels a pending or confirmed event. Owners may cancel
// their own events; admins may cancel any. Cancelling a confirmed event
// re-evaluates the space flag in case nothing else holds it.
func (s *BookingService) CancelEvent(ctx context.Context, eventID uint, actor *models.User) (*models.Event, error) {
	var event models.Event
	var freeSpace bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Space").First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
			}
			return err
		}

		if event.UserID != actor.ID && !actor.IsAdmin() {
			return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
		}

		if !event.Status.CanTransitionTo(models.StatusCancelled) {
			return &InvalidTransitionError{From: event.Status, To: models.StatusCancelled}
		}

		wasConfirmed := event.Status == models.StatusConfirmed
		event.Status = models.StatusCancelled
		if err := tx.Save(&event).Error; err != nil {
			return err
		}

		if wasConfirmed {
			active, err := hasActiveConfirmed(tx, event.SpaceID, s.now(), event.ID)
			if err != nil {
				return err
			}
			freeSpace = !active
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if freeSpace && s.notifier != nil {
		s.notifier.ScheduleSpaceStatus(ctx, event.ID, event.SpaceID, models.SpaceFree)
	}
	return &event, nil
}

// GetUpcomingEvents lists confirmed events that start after now, soonest
// first, optionally filtered by event type.
func (s *BookingService) GetUpcomingEvents(ctx context.Context, eventType string) ([]models.Event, error) {
	query := s.db.WithContext(ctx).Preload("Space").Preload("User").
		Where("status = ? AND start_datetime > ?", models.StatusConfirmed, s.now())
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var events []models.Event
	err := query.Order("start_datetime ASC").Find(&events).Error
	return events, err
}

// GetUserEvents lists every event the user created, regardless of status.
func (s *BookingService) GetUserEvents(ctx context.Context, userID uint) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).Preload("Space").
		Where("user_id = ?", userID).
		Order("start_datetime ASC").
		Find(&events).Error
	return events, err
}

// GetPendingEvents lists events awaiting admin review.
func (s *BookingService) GetPendingEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).Preload("Space").Preload("User").
		Where("status = ?", models.StatusPending).
		Order("start_datetime ASC").
		Find(&events).Error
	return events, err
}
