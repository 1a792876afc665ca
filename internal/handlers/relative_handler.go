package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/veripath/backend/internal/models"
	"github.com/veripath/backend/internal/services/profile"
)

// CreateRelativeRequest is the payload for recording a related person
type CreateRelativeRequest struct {
	FirstName          string `json:"first_name" binding:"required"`
	LastName           string `json:"last_name" binding:"required"`
	Relationship       string `json:"relationship" binding:"required"`
	PoliticalInfluence bool   `json:"political_influence"`
}

// RelativeHandler handles relative related requests
type RelativeHandler struct {
	profileService *profile.ProfileService
}

// NewRelativeHandler creates a new relative handler
func NewRelativeHandler(profileService *profile.ProfileService) *RelativeHandler {
	return &RelativeHandler{profileService: profileService}
}

// CreateRelative records a related person for a profile
func (h *RelativeHandler) CreateRelative(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	var req CreateRelativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	relative := models.Relative{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Relationship:       req.Relationship,
		PoliticalInfluence: req.PoliticalInfluence,
	}

	if err := h.profileService.AddRelative(profileID, &relative); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create relative"})
		return
	}

	c.JSON(http.StatusCreated, relative)
}

// ListRelatives returns the relatives recorded for a profile
func (h *RelativeHandler) ListRelatives(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	relatives, err := h.profileService.ListRelatives(profileID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list relatives"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"relatives": relatives})
}
