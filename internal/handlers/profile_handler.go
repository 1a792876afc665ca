package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/veripath/backend/internal/models"
	"github.com/veripath/backend/internal/services/profile"
	"github.com/veripath/backend/internal/services/promo"
	"gorm.io/gorm"
)

// CreateProfileRequest is the payload for creating a new profile
type CreateProfileRequest struct {
	FirstName   string  `json:"first_name" binding:"required"`
	LastName    string  `json:"last_name" binding:"required"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	ZipCode     string  `json:"zip_code"`
	Country     string  `json:"country" binding:"required"`
	Nationality string  `json:"nationality" binding:"required"`
	DateOfBirth string  `json:"date_of_birth" binding:"required"`
	PhoneNumber string  `json:"phone_number"`
	Email       string  `json:"email" binding:"required,email"`
	SSN         *string `json:"ssn"`
	TIN         *string `json:"tin"`
}

// OccupationDataRequest is the payload for the optional enrichment data
type OccupationDataRequest struct {
	Occupation     string              `json:"occupation" binding:"required"`
	Employer       string              `json:"employer" binding:"required"`
	SourceOfIncome models.IncomeSource `json:"source_of_income" binding:"required"`
}

// ProfileHandler handles profile related requests
type ProfileHandler struct {
	profileService *profile.ProfileService
	promoService   *promo.PromoCodeService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *profile.ProfileService, promoService *promo.PromoCodeService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		promoService:   promoService,
	}
}

// CreateProfile creates a new profile in the pending status
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := models.Profile{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		Nationality: req.Nationality,
		DateOfBirth: req.DateOfBirth,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		SSN:         req.SSN,
		TIN:         req.TIN,
	}

	if err := h.profileService.Create(&p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// GetProfile returns a single profile, including its promo code when one was issued
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	p, err := h.profileService.FindByID(id)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	response := gin.H{"profile": p}
	if promoCode, err := h.promoService.FindByProfile(id); err == nil {
		response["promo_code"] = promoCode
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promo code"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListProfiles returns all profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profileService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// AddOccupationData attaches the optional occupation enrichment to a profile
func (h *ProfileHandler) AddOccupationData(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile ID"})
		return
	}

	var req OccupationDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profileService.AddOccupationData(id, req.Occupation, req.Employer, req.SourceOfIncome); err != nil {
		switch {
		case errors.Is(err, profile.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		case errors.Is(err, profile.ErrInvalidIncomeSource):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update occupation data"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
