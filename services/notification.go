package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartspace/smartspace-be/models"
	"github.com/smartspace/smartspace-be/queue"
	"github.com/smartspace/smartspace-be/websocket"
)

// Notifier dispatches booking lifecycle notifications. All methods are
// fire-and-forget: delivery failures must never surface to the caller or
// roll back a committed booking.
type Notifier interface {
	BookingSubmitted(ctx context.Context, event *models.Event, space *models.Space, user *models.User)
	BookingApproved(ctx context.Context, event *models.Event, space *models.Space, user *models.User)
	BookingRejected(ctx context.Context, event *models.Event, space *models.Space, user *models.User)
	VerificationCode(ctx context.Context, user *models.User, code string)
	ScheduleSpaceStatus(ctx context.Context, eventID, spaceID uint, status models.SpaceStatus)
}

// NotificationService enqueues email jobs on the Redis queue and mirrors
// booking events onto the websocket hub. It satisfies Notifier.
type NotificationService struct {
	queue      *queue.Queue
	hub        *websocket.Hub
	adminEmail string
	logger     *zap.Logger
}

func NewNotificationService(q *queue.Queue, hub *websocket.Hub, adminEmail string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: q, hub: hub, adminEmail: adminEmail, logger: logger}
}

func (n *NotificationService) BookingSubmitted(ctx context.Context, event *models.Event, space *models.Space, user *models.User) {
	subject := fmt.Sprintf("Event Booking Submitted: %s", event.EventName)
	body := fmt.Sprintf(
		"Your event %q has been submitted and is pending approval.\n"+
			"Space: %s\nStart: %s\nEnd: %s\nStatus: pending\n"+
			"You will be notified once an admin approves your event.\n",
		event.EventName, space.Name,
		event.StartDatetime.Format("2006-01-02 15:04"),
		event.EndDatetime.Format("2006-01-02 15:04"))

	for _, rcpt := range n.recipients(event, space, user) {
		n.enqueueEmail(ctx, "booking_submitted", event.ID, rcpt, subject, body)
	}
	n.broadcast(websocket.EventBookingSubmitted, event, space, user)
}

func (n *NotificationService) BookingApproved(ctx context.Context, event *models.Event, space *models.Space, user *models.User) {
	subject := fmt.Sprintf("Event Booking Approved: %s", event.EventName)
	body := fmt.Sprintf(
		"Your event %q in space %s has been approved.\nStart: %s\nEnd: %s\n",
		event.EventName, space.Name,
		event.StartDatetime.Format("2006-01-02 15:04"),
		event.EndDatetime.Format("2006-01-02 15:04"))

	n.enqueueEmail(ctx, "booking_approved", event.ID, user.Email, subject, body)
	if event.OrganizerEmail != "" && event.OrganizerEmail != user.Email {
		n.enqueueEmail(ctx, "booking_approved", event.ID, event.OrganizerEmail, subject, body)
	}
	n.broadcast(websocket.EventBookingApproved, event, space, user)
}

func (n *NotificationService) BookingRejected(ctx context.Context, event *models.Event, space *models.Space, user *models.User) {
	subject := fmt.Sprintf("Event Booking Rejected: %s", event.EventName)
	body := fmt.Sprintf(
		"Your event %q in space %s has been rejected.\n"+
			"Please contact the administrator or request a different slot.\n",
		event.EventName, space.Name)

	n.enqueueEmail(ctx, "booking_rejected", event.ID, user.Email, subject, body)
	n.broadcast(websocket.EventBookingRejected, event, space, user)
}

func (n *NotificationService) VerificationCode(ctx context.Context, user *models.User, code string) {
	subject := "Verify Your SmartSpace Account"
	body := fmt.Sprintf(
		"Hi %s,\n\nThank you for signing up with SmartSpace.\n\n"+
			"Your verification code is: %s\n\n"+
			"Please enter this code on the verification page to activate your account.\n",
		user.FirstName, code)

	n.enqueueEmail(ctx, "email_verification", 0, user.Email, subject, body)
}

func (n *NotificationService) ScheduleSpaceStatus(ctx context.Context, eventID, spaceID uint, status models.SpaceStatus) {
	if n.queue == nil {
		return
	}
	err := n.queue.EnqueueSpaceStatus(ctx, queue.SpaceStatusPayload{
		EventID: eventID,
		SpaceID: spaceID,
		Status:  string(status),
	})
	if err != nil {
		n.logger.Warn("space status job enqueue failed",
			zap.Uint("event_id", eventID),
			zap.Uint("space_id", spaceID),
			zap.Error(err))
	}
}

func (n *NotificationService) recipients(event *models.Event, space *models.Space, user *models.User) []string {
	seen := make(map[string]bool)
	var out []string
	for _, addr := range []string{user.Email, event.OrganizerEmail, n.adminEmail} {
		if addr != "" && !seen[addr] {
			seen[addr] = true
			out = append(out, addr)
		}
	}
	return out
}

func (n *NotificationService) enqueueEmail(ctx context.Context, emailType string, eventID uint, to, subject, body string) {
	if n.queue == nil {
		return
	}
	err := n.queue.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType: emailType,
		EventID:   eventID,
		Recipient: to,
		Subject:   subject,
		Body:      body,
	})
	if err != nil {
		n.logger.Warn("email job enqueue failed",
			zap.String("email_type", emailType),
			zap.String("recipient", to),
			zap.Error(err))
	}
}

func (n *NotificationService) broadcast(eventType string, event *models.Event, space *models.Space, user *models.User) {
	if n.hub == nil {
		return
	}
	n.hub.Broadcast(eventType, websocket.BookingEvent{
		EventID:   event.ID,
		EventName: event.EventName,
		SpaceID:   space.ID,
		SpaceName: space.Name,
		UserName:  user.FullName(),
		Start:     event.StartDatetime.Format("2006-01-02 15:04"),
		End:       event.EndDatetime.Format("2006-01-02 15:04"),
		Status:    string(event.Status),
	})
}
