package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartspace/smartspace-be/models"
	"github.com/smartspace/smartspace-be/services"
)

type BookingController struct {
	bookingService *services.BookingService
	authService    *services.AuthService
}

func NewBookingController(bookingService *services.BookingService, authService *services.AuthService) *BookingController {
	return &BookingController{
		bookingService: bookingService,
		authService:    authService,
	}
}

type CreateBookingRequest struct {
	SpaceID           uint      `json:"space_id" binding:"required"`
	EventName         string    `json:"event_name" binding:"required"`
	StartDatetime     time.Time `json:"start_datetime" binding:"required"`
	EndDatetime       time.Time `json:"end_datetime" binding:"required"`
	OrganizerName     string    `json:"organizer_name" binding:"required"`
	OrganizerEmail    string    `json:"organizer_email" binding:"required,email"`
	EventType         string    `json:"event_type" binding:"required"`
	Attendance        *int      `json:"attendance"`
	RequiredResources string    `json:"required_resources"`
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventType, err := models.ParseEventType(req.EventType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "event_type"})
		return
	}

	user, err := bc.authService.GetUser(c.Request.Context(), userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	event, err := bc.bookingService.RequestBooking(c.Request.Context(), user, services.BookingRequest{
		SpaceID:           req.SpaceID,
		EventName:         req.EventName,
		StartDatetime:     req.StartDatetime,
		EndDatetime:       req.EndDatetime,
		OrganizerName:     req.OrganizerName,
		OrganizerEmail:    req.OrganizerEmail,
		EventType:         eventType,
		Attendance:        req.Attendance,
		RequiredResources: req.RequiredResources,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event booked successfully",
		"event":   event,
	})
}

// GetUpcomingBookings lists confirmed future events, optionally filtered
// by the event_type query parameter.
func (bc *BookingController) GetUpcomingBookings(c *gin.Context) {
	eventType := c.Query("event_type")
	if eventType != "" {
		if _, err := models.ParseEventType(eventType); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "event_type"})
			return
		}
	}

	events, err := bc.bookingService.GetUpcomingEvents(c.Request.Context(), eventType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(events),
		"data":  events,
	})
}

// GetMyBookings lists the caller's events regardless of status, with
// per-status counts.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	userID, _ := c.Get("user_id")

	events, err := bc.bookingService.GetUserEvents(c.Request.Context(), userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	byStatus := make(map[models.EventStatus]int)
	for _, ev := range events {
		byStatus[ev.Status]++
	}

	c.JSON(http.StatusOK, gin.H{
		"count":            len(events),
		"events_by_status": byStatus,
		"data":             events,
	})
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	userID, _ := c.Get("user_id")

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	user, err := bc.authService.GetUser(c.Request.Context(), userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	event, err := bc.bookingService.CancelEvent(c.Request.Context(), uint(eventID), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled",
		"event":   event,
	})
}
