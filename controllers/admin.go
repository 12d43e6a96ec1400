package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartspace/smartspace-be/models"
	"github.com/smartspace/smartspace-be/services"
)

type AdminController struct {
	bookingService *services.BookingService
	spaceService   *services.SpaceService
	sweeper        *services.SweeperService
}

func NewAdminController(bookingService *services.BookingService, spaceService *services.SpaceService, sweeper *services.SweeperService) *AdminController {
	return &AdminController{
		bookingService: bookingService,
		spaceService:   spaceService,
		sweeper:        sweeper,
	}
}

type CreateSpaceRequest struct {
	Name         string  `json:"name" binding:"required"`
	Location     string  `json:"location"`
	Capacity     int     `json:"capacity" binding:"required,min=1"`
	Description  string  `json:"description"`
	Equipment    string  `json:"equipment"`
	Features     string  `json:"features"`
	PricePerHour float64 `json:"price_per_hour" binding:"min=0"`
}

type UpdateSpaceStatusRequest struct {
	Status models.SpaceStatus `json:"status" binding:"required"`
}

func (ac *AdminController) CreateSpace(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	organizerID := userID.(uint)
	space, err := ac.spaceService.CreateSpace(c.Request.Context(), services.CreateSpaceInput{
		Name:         req.Name,
		Location:     req.Location,
		Capacity:     req.Capacity,
		Description:  req.Description,
		Equipment:    req.Equipment,
		Features:     req.Features,
		PricePerHour: req.PricePerHour,
		OrganizerID:  &organizerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Space created successfully",
		"space":   space,
	})
}

func (ac *AdminController) UpdateSpaceStatus(c *gin.Context) {
	spaceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	var req UpdateSpaceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.spaceService.SetSpaceStatus(c.Request.Context(), uint(spaceID), req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Space status updated"})
}

func (ac *AdminController) GetPendingBookings(c *gin.Context) {
	events, err := ac.bookingService.GetPendingEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(events),
		"data":  events,
	})
}

func (ac *AdminController) ApproveBooking(c *gin.Context) {
	adminID, _ := c.Get("user_id")

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := ac.bookingService.ApproveEvent(c.Request.Context(), uint(eventID), adminID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event approved successfully",
		"event":   event,
		"note":    "Space status will be updated shortly",
	})
}

func (ac *AdminController) RejectBooking(c *gin.Context) {
	adminID, _ := c.Get("user_id")

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	event, err := ac.bookingService.RejectEvent(c.Request.Context(), uint(eventID), adminID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event rejected",
		"event":   event,
	})
}

// CheckBookingStatus runs the reconciliation sweep synchronously and
// reports what it changed.
func (ac *AdminController) CheckBookingStatus(c *gin.Context) {
	result, err := ac.sweeper.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checked event status",
		"result":  result,
	})
}
