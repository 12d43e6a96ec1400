package websocket

// Event types for WebSocket messages
const (
	EventBookingSubmitted = "booking:submitted"
	EventBookingApproved  = "booking:approved"
	EventBookingRejected  = "booking:rejected"
	EventBookingCancelled = "booking:cancelled"
	EventSpaceUpdated     = "space:updated"
)

// BookingEvent represents a booking lifecycle event pushed to clients.
type BookingEvent struct {
	EventID   uint   `json:"event_id"`
	EventName string `json:"event_name"`
	SpaceID   uint   `json:"space_id"`
	SpaceName string `json:"space_name"`
	UserName  string `json:"user_name"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Status    string `json:"status"`
}

// SpaceEvent represents a space availability change.
type SpaceEvent struct {
	SpaceID   uint   `json:"space_id"`
	SpaceName string `json:"space_name"`
	Status    string `json:"status"`
}
