package services

import (
	"context"
	"errors"
	"testing"

	"github.com/smartspace/smartspace-be/models"
)

func newBookingService(t *testing.T) (*BookingService, *fakeNotifier, *fakeClock) {
	t.Helper()
	db := newTestDB(t)
	notifier := newFakeNotifier()
	clock := newFakeClock(testBase)
	svc := NewBookingService(db, notifier, nil)
	svc.now = clock.Now
	return svc, notifier, clock
}

func TestRequestBookingCreatesPendingEvent(t *testing.T) {
	svc, notifier, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)

	event, err := svc.RequestBooking(ctx, user, validRequest(space.ID, at(9, 0), at(10, 0)))
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}
	if event.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", event.Status)
	}
	if event.UserID != user.ID {
		t.Errorf("user_id = %d, want %d", event.UserID, user.ID)
	}

	// The space stays free until an admin confirms.
	var got models.Space
	if err := svc.db.First(&got, space.ID).Error; err != nil {
		t.Fatalf("reload space: %v", err)
	}
	if got.Status != models.SpaceFree {
		t.Errorf("space status = %s, want free", got.Status)
	}

	if len(notifier.submitted) != 1 || notifier.submitted[0] != event.ID {
		t.Errorf("submitted notifications = %v, want [%d]", notifier.submitted, event.ID)
	}
}

func TestRequestBookingRejectsOverlap(t *testing.T) {
	svc, _, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)

	if _, err := svc.RequestBooking(ctx, user, validRequest(space.ID, at(10, 0), at(11, 0))); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// [10:30, 11:30) overlaps [10:00, 11:00) and must be rejected even
	// though the first request is still pending.
	_, err := svc.RequestBooking(ctx, user, validRequest(space.ID, at(10, 30), at(11, 30)))
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if conflictErr.Event == nil {
		t.Error("conflict should carry the colliding event for diagnostics")
	}

	// Touching boundary is not a conflict under half-open semantics.
	if _, err := svc.RequestBooking(ctx, user, validRequest(space.ID, at(11, 0), at(12, 0))); err != nil {
		t.Fatalf("boundary booking: %v", err)
	}
}

func TestRequestBookingValidation(t *testing.T) {
	svc, _, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)

	cases := []struct {
		name string
		req  BookingRequest
	}{
		{"start after end", validRequest(space.ID, at(11, 0), at(10, 0))},
		{"start equals end", validRequest(space.ID, at(10, 0), at(10, 0))},
		{"start in the past", validRequest(space.ID, at(7, 0), at(9, 0))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RequestBooking(ctx, user, tc.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	t.Run("negative attendance", func(t *testing.T) {
		req := validRequest(space.ID, at(9, 0), at(10, 0))
		neg := -3
		req.Attendance = &neg
		_, err := svc.RequestBooking(ctx, user, req)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})
}

func TestRequestBookingCoarseGate(t *testing.T) {
	svc, _, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceBooked)

	_, err := svc.RequestBooking(ctx, user, validRequest(space.ID, at(9, 0), at(10, 0)))
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
}

func TestRequestBookingSpaceNotFound(t *testing.T) {
	svc, _, _ := newBookingService(t)
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)

	_, err := svc.RequestBooking(context.Background(), user, validRequest(999, at(9, 0), at(10, 0)))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApproveEvent(t *testing.T) {
	svc, notifier, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	admin := createUser(t, svc.db, "admin@example.com", models.RoleAdmin)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)
	event := createEvent(t, svc.db, user.ID, space.ID, at(9, 0), at(10, 0), models.StatusPending)

	approved, err := svc.ApproveEvent(ctx, event.ID, admin.ID)
	if err != nil {
		t.Fatalf("ApproveEvent: %v", err)
	}
	if approved.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != admin.ID {
		t.Errorf("approved_by = %v, want %d", approved.ApprovedBy, admin.ID)
	}

	// The space booked flag goes through the async path, not the approval
	// transaction.
	if len(notifier.scheduled) != 1 {
		t.Fatalf("scheduled = %v, want one entry", notifier.scheduled)
	}
	if s := notifier.scheduled[0]; s.SpaceID != space.ID || s.Status != models.SpaceBooked {
		t.Errorf("scheduled = %+v, want space %d booked", s, space.ID)
	}
	if len(notifier.approved) != 1 {
		t.Errorf("approved notifications = %v, want one", notifier.approved)
	}
}

func TestApproveEventNotPending(t *testing.T) {
	svc, _, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	admin := createUser(t, svc.db, "admin@example.com", models.RoleAdmin)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)

	for _, status := range []models.EventStatus{
		models.StatusConfirmed,
		models.StatusCancelled,
		models.StatusCompleted,
		models.StatusRejected,
	} {
		t.Run(string(status), func(t *testing.T) {
			event := createEvent(t, svc.db, user.ID, space.ID, at(9, 0), at(10, 0), status)
			_, err := svc.ApproveEvent(ctx, event.ID, admin.ID)
			var transitionErr *InvalidTransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("err = %v, want InvalidTransitionError", err)
			}
			if transitionErr.From != status {
				t.Errorf("From = %s, want %s", transitionErr.From, status)
			}

			var got models.Event
			if err := svc.db.First(&got, event.ID).Error; err != nil {
				t.Fatalf("reload event: %v", err)
			}
			if got.Status != status {
				t.Errorf("event status changed to %s, want %s untouched", got.Status, status)
			}
		})
	}
}

func TestApproveEventMissing(t *testing.T) {
	svc, _, _ := newBookingService(t)
	_, err := svc.ApproveEvent(context.Background(), 12345, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// Two overlapping pending events can only exist via admin override; once
// one is confirmed, approving the other must fail on the re-check.
func TestApproveEventRecheckConflict(t *testing.T) {
	svc, _, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	admin := createUser(t, svc.db, "admin@example.com", models.RoleAdmin)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)

	first := createEvent(t, svc.db, user.ID, space.ID, at(10, 0), at(11, 0), models.StatusPending)
	second := createEvent(t, svc.db, user.ID, space.ID, at(10, 30), at(11, 30), models.StatusPending)

	if _, err := svc.ApproveEvent(ctx, first.ID, admin.ID); err != nil {
		t.Fatalf("approve first: %v", err)
	}

	_, err := svc.ApproveEvent(ctx, second.ID, admin.ID)
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("err = %v, want ConflictError", err)
	}

	var got models.Event
	if err := svc.db.First(&got, second.ID).Error; err != nil {
		t.Fatalf("reload second: %v", err)
	}
	if got.Status != models.StatusPending {
		t.Errorf("second event status = %s, want pending untouched", got.Status)
	}
}

func TestRejectEvent(t *testing.T) {
	svc, notifier, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	admin := createUser(t, svc.db, "admin@example.com", models.RoleAdmin)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)
	event := createEvent(t, svc.db, user.ID, space.ID, at(9, 0), at(10, 0), models.StatusPending)

	rejected, err := svc.RejectEvent(ctx, event.ID, admin.ID)
	if err != nil {
		t.Fatalf("RejectEvent: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
	if len(notifier.rejected) != 1 {
		t.Errorf("rejected notifications = %v, want one", notifier.rejected)
	}

	// Rejecting again is an illegal transition, not a no-op.
	_, err = svc.RejectEvent(ctx, event.ID, admin.ID)
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
}

func TestCancelEvent(t *testing.T) {
	svc, notifier, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	other := createUser(t, svc.db, "bob@example.com", models.RoleUser)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceBooked)

	event := createEvent(t, svc.db, user.ID, space.ID, at(9, 0), at(10, 0), models.StatusConfirmed)

	// Another user cannot cancel someone else's booking.
	if _, err := svc.CancelEvent(ctx, event.ID, other); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign cancel err = %v, want ErrNotFound", err)
	}

	cancelled, err := svc.CancelEvent(ctx, event.ID, user)
	if err != nil {
		t.Fatalf("CancelEvent: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	// Last confirmed hold on the space is gone, so a free-up is scheduled.
	if len(notifier.scheduled) != 1 || notifier.scheduled[0].Status != models.SpaceFree {
		t.Errorf("scheduled = %v, want one free entry", notifier.scheduled)
	}

	// A completed event cannot be cancelled.
	done := createEvent(t, svc.db, user.ID, space.ID, at(6, 0), at(7, 0), models.StatusCompleted)
	_, err = svc.CancelEvent(ctx, done.ID, user)
	var transitionErr *InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
}

func TestGetUpcomingEvents(t *testing.T) {
	svc, _, _ := newBookingService(t)
	ctx := context.Background()
	user := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)

	createEvent(t, svc.db, user.ID, space.ID, at(9, 0), at(10, 0), models.StatusConfirmed)
	createEvent(t, svc.db, user.ID, space.ID, at(11, 0), at(12, 0), models.StatusPending)
	createEvent(t, svc.db, user.ID, space.ID, at(6, 0), at(7, 0), models.StatusConfirmed) // already started

	events, err := svc.GetUpcomingEvents(ctx, "")
	if err != nil {
		t.Fatalf("GetUpcomingEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Status != models.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", events[0].Status)
	}

	events, err = svc.GetUpcomingEvents(ctx, "workshop")
	if err != nil {
		t.Fatalf("GetUpcomingEvents filtered: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d workshop events, want 0", len(events))
	}
}

func TestGetUserEvents(t *testing.T) {
	svc, _, _ := newBookingService(t)
	ctx := context.Background()
	alice := createUser(t, svc.db, "alice@example.com", models.RoleUser)
	bob := createUser(t, svc.db, "bob@example.com", models.RoleUser)
	space := createSpace(t, svc.db, "Main Hall", models.SpaceFree)

	createEvent(t, svc.db, alice.ID, space.ID, at(9, 0), at(10, 0), models.StatusPending)
	createEvent(t, svc.db, alice.ID, space.ID, at(6, 0), at(7, 0), models.StatusCompleted)
	createEvent(t, svc.db, bob.ID, space.ID, at(11, 0), at(12, 0), models.StatusConfirmed)

	events, err := svc.GetUserEvents(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetUserEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (all statuses, only alice's)", len(events))
	}
}
