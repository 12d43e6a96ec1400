package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusConfirmed EventStatus = "confirmed"
	StatusCancelled EventStatus = "cancelled"
	StatusCompleted EventStatus = "completed"
	StatusRejected  EventStatus = "rejected"
)

// validTransitions is the event lifecycle state machine. Completed is
// terminal; cancelled may only be corrected to rejected by an admin,
// never back to an active status.
var validTransitions = map[EventStatus][]EventStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusRejected},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: {StatusCancelled, StatusRejected},
	StatusCompleted: {},
	StatusRejected:  {},
}

// IsValid returns true if the status is a recognized event status.
func (s EventStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s EventStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s EventStatus) String() string {
	return string(s)
}

type EventType string

const (
	EventMeeting    EventType = "meeting"
	EventConference EventType = "conference"
	EventWebinar    EventType = "webinar"
	EventWorkshop   EventType = "workshop"
)

// IsValid returns true if the event type is one of the known kinds.
func (t EventType) IsValid() bool {
	switch t {
	case EventMeeting, EventConference, EventWebinar, EventWorkshop:
		return true
	}
	return false
}

// ParseEventType converts a string to an EventType, returning an error if invalid.
func ParseEventType(s string) (EventType, error) {
	if t := EventType(s); t.IsValid() {
		return t, nil
	}
	return "", fmt.Errorf("invalid event type: %s", s)
}

// BlockingStatuses are the statuses that count toward interval-overlap
// conflicts. A pending request does not reserve the slot exclusively but
// does block other requests for the same window.
var BlockingStatuses = []EventStatus{StatusPending, StatusConfirmed}

// Event is the authoritative booking record. Rows are never deleted in
// normal operation; status changes are the only mutation path.
type Event struct {
	ID                uint        `json:"id" gorm:"primaryKey"`
	EventName         string      `json:"event_name" gorm:"not null"`
	StartDatetime     time.Time   `json:"start_datetime" gorm:"not null;index"`
	EndDatetime       time.Time   `json:"end_datetime" gorm:"not null;index"`
	OrganizerName     string      `json:"organizer_name" gorm:"not null"`
	OrganizerEmail    string      `json:"organizer_email" gorm:"not null"`
	EventType         EventType   `json:"event_type" gorm:"default:'meeting'"`
	Attendance        *int        `json:"attendance"`
	RequiredResources string      `json:"required_resources"`
	Status            EventStatus `json:"status" gorm:"default:'pending';index"`
	UserID            uint        `json:"user_id" gorm:"not null"`
	User              User        `json:"user,omitempty"`
	SpaceID           uint        `json:"space_id" gorm:"not null;index"`
	Space             Space       `json:"space,omitempty"`
	ApprovedBy        *uint       `json:"approved_by"`
	ApprovedAt        *time.Time  `json:"approved_at"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsUpcoming reports whether the event is confirmed and starts after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Status == StatusConfirmed && e.StartDatetime.After(now)
}

// Overlaps reports whether the event's interval overlaps [start, end)
// under half-open semantics: touching endpoints do not overlap.
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.StartDatetime.Before(end) && e.EndDatetime.After(start)
}
