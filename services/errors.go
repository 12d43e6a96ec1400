package services

import (
	"errors"
	"fmt"

	"github.com/smartspace/smartspace-be/models"
)

// ErrNotFound is returned when a referenced space, event or user does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError is returned when a space is not free or an overlapping
// booking exists. Event carries the colliding booking, when known, so the
// caller can pick a different slot.
type ConflictError struct {
	Message string
	Event   *models.Event
}

func (e *ConflictError) Error() string {
	if e.Event != nil {
		return fmt.Sprintf("%s: %q from %s to %s (%s)",
			e.Message,
			e.Event.EventName,
			e.Event.StartDatetime.Format("2006-01-02 15:04"),
			e.Event.EndDatetime.Format("2006-01-02 15:04"),
			e.Event.Status)
	}
	return e.Message
}

// InvalidTransitionError is returned when an illegal status change is
// attempted, for example approving an already-rejected event.
type InvalidTransitionError struct {
	From models.EventStatus
	To   models.EventStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition event from %s to %s", e.From, e.To)
}
