package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	kycsvc "github.com/veripath/backend/internal/services/kyc"
	"github.com/veripath/backend/internal/services/profile"
)

// KYCHandler handles the inbound verification webhooks and the manual review surface
type KYCHandler struct {
	kycService *kycsvc.KYCService
}

// NewKYCHandler creates a new KYC handler
func NewKYCHandler(kycService *kycsvc.KYCService) *KYCHandler {
	return &KYCHandler{kycService: kycService}
}

// HandleIDVerification receives an ID verification result from the external
// identity verification service.
func (h *KYCHandler) HandleIDVerification(c *gin.Context) {
	var msg kycsvc.IDVerificationMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.kycService.ProcessIDVerification(msg); err != nil {
		respondKYCError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleAddressVerification receives an address verification result from the
// external address verification service.
func (h *KYCHandler) HandleAddressVerification(c *gin.Context) {
	var msg kycsvc.AddressVerificationMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.kycService.ProcessAddressVerification(msg); err != nil {
		respondKYCError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleManualBackgroundCheck receives a human reviewer's resolution for a
// profile in manual review.
func (h *KYCHandler) HandleManualBackgroundCheck(c *gin.Context) {
	var msg kycsvc.ManualBackgroundCheckMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.kycService.SubmitManualBackgroundCheck(msg); err != nil {
		respondKYCError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ManualReviewWorklist lists profiles currently awaiting manual review
func (h *KYCHandler) ManualReviewWorklist(c *gin.Context) {
	profiles, err := h.kycService.ManualReviewWorklist()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list manual review worklist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// respondKYCError maps service errors onto HTTP statuses. Conflicts and
// transition violations both come back as 409 so the upstream sender knows the
// result was not applied but the message itself was well formed.
func respondKYCError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
	case errors.Is(err, kycsvc.ErrInvalidResult):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, kycsvc.ErrInvalidTransition),
		errors.Is(err, kycsvc.ErrAddressVerificationNotSupported),
		errors.Is(err, profile.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process verification result"})
	}
}
