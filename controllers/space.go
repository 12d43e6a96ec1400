package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smartspace/smartspace-be/services"
)

type SpaceController struct {
	spaceService *services.SpaceService
}

func NewSpaceController(spaceService *services.SpaceService) *SpaceController {
	return &SpaceController{spaceService: spaceService}
}

func (sc *SpaceController) ListSpaces(c *gin.Context) {
	spaces, err := sc.spaceService.ListSpaces(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(spaces),
		"data":  spaces,
	})
}

func (sc *SpaceController) GetSpace(c *gin.Context) {
	spaceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid space id"})
		return
	}

	space, err := sc.spaceService.GetSpace(c.Request.Context(), uint(spaceID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"space": space})
}
