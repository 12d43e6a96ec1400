package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartspace/smartspace-be/services"
)

// respondError maps service errors onto the HTTP taxonomy: validation and
// illegal transitions are 400, conflicts 409, missing records 404,
// anything else 500.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var transitionErr *services.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            transitionErr.Error(),
			"current_status":   transitionErr.From,
			"requested_status": transitionErr.To,
		})
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		body := gin.H{"error": conflictErr.Message}
		if ev := conflictErr.Event; ev != nil {
			body["details"] = gin.H{
				"booked_event": ev.EventName,
				"from":         ev.StartDatetime.Format("2006-01-02 15:04"),
				"to":           ev.EndDatetime.Format("2006-01-02 15:04"),
				"status":       ev.Status,
			}
		}
		c.JSON(http.StatusConflict, body)
		return
	}

	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
