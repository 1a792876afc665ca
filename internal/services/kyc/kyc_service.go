package kyc

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	kycdomain "github.com/veripath/backend/internal/kyc"
	"github.com/veripath/backend/internal/models"
	"github.com/veripath/backend/internal/queue"
	"github.com/veripath/backend/internal/services/profile"
)

var (
	// ErrInvalidTransition is returned when the proposed status is not
	// reachable from the profile's current status.
	ErrInvalidTransition = errors.New("invalid KYC status transition")

	// ErrInvalidResult is returned for verification results or resolutions
	// outside the enumerated set.
	ErrInvalidResult = errors.New("invalid verification result")

	// ErrAddressVerificationNotSupported is returned when an address
	// verification result arrives for a profile whose country skips address
	// verification. That input should never exist, so it is treated as a
	// consistency violation rather than a normal rejection.
	ErrAddressVerificationNotSupported = errors.New("address verification not supported for this profile's country")
)

// Verification result values as delivered by the external verification services
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"

	ResolutionPassed   = "passed"
	ResolutionRejected = "rejected"
)

// IDVerificationMessage is the inbound ID verification result
type IDVerificationMessage struct {
	ProfileID      uuid.UUID `json:"user_id" binding:"required"`
	VerificationID string    `json:"verification_id" binding:"required"`
	Result         string    `json:"result" binding:"required"`
	Timestamp      time.Time `json:"timestamp" binding:"required"`
}

// AddressVerificationMessage is the inbound address verification result
type AddressVerificationMessage struct {
	ProfileID      uuid.UUID `json:"user_id" binding:"required"`
	VerificationID string    `json:"verification_id" binding:"required"`
	Result         string    `json:"result" binding:"required"`
	Timestamp      time.Time `json:"timestamp" binding:"required"`
}

// ManualBackgroundCheckMessage is the resolution submitted by a human reviewer
type ManualBackgroundCheckMessage struct {
	ProfileID   uuid.UUID `json:"user_id" binding:"required"`
	ValidatorID string    `json:"validator_id" binding:"required"`
	Resolution  string    `json:"resolution" binding:"required"`
	Timestamp   time.Time `json:"timestamp" binding:"required"`
}

// BackgroundCheckJobPayload is enqueued when identity confirmation triggers screening
type BackgroundCheckJobPayload struct {
	ProfileID uuid.UUID `json:"profile_id"`
}

// WelcomeEmailJobPayload is enqueued after a passed background check
type WelcomeEmailJobPayload struct {
	ProfileID uuid.UUID `json:"profile_id"`
}

// KYCService handles the inbound verification results that drive the
// onboarding state machine. Each handler validates the transition, records the
// new status together with its single metadata field, and enqueues follow-up
// work where the workflow calls for it.
type KYCService struct {
	profiles *profile.ProfileService
	policy   *kycdomain.CountryPolicy
	jobs     queue.Enqueuer
}

// NewKYCService creates a new KYC service
func NewKYCService(profiles *profile.ProfileService, policy *kycdomain.CountryPolicy, jobs queue.Enqueuer) *KYCService {
	return &KYCService{
		profiles: profiles,
		policy:   policy,
		jobs:     jobs,
	}
}

// ProcessIDVerification applies an ID verification result. A successful
// verification for a profile from a skip-address country triggers background
// screening directly; other profiles wait for the address verification result.
func (s *KYCService) ProcessIDVerification(msg IDVerificationMessage) error {
	p, err := s.profiles.FindByID(msg.ProfileID)
	if err != nil {
		return err
	}

	var next models.KYCStatus
	var fields map[string]interface{}
	switch msg.Result {
	case ResultSuccess:
		next = models.KYCStatusIDVerified
		fields = map[string]interface{}{
			"id_verification_id": msg.VerificationID,
			"id_verified_at":     msg.Timestamp,
		}
	case ResultRejected:
		next = models.KYCStatusIDRejected
		fields = map[string]interface{}{
			"id_verification_id": msg.VerificationID,
			"id_rejected_at":     msg.Timestamp,
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResult, msg.Result)
	}

	if err := s.transition(p, next, fields); err != nil {
		return err
	}

	if msg.Result == ResultSuccess && s.policy.SkipsAddressVerification(p.Country) {
		return s.enqueueBackgroundCheck(p.ID)
	}
	return nil
}

// ProcessAddressVerification applies an address verification result. A
// successful verification triggers background screening.
func (s *KYCService) ProcessAddressVerification(msg AddressVerificationMessage) error {
	p, err := s.profiles.FindByID(msg.ProfileID)
	if err != nil {
		return err
	}

	if s.policy.SkipsAddressVerification(p.Country) {
		return fmt.Errorf("%w: %s", ErrAddressVerificationNotSupported, p.Country)
	}

	var next models.KYCStatus
	var fields map[string]interface{}
	switch msg.Result {
	case ResultSuccess:
		next = models.KYCStatusAddressVerified
		fields = map[string]interface{}{
			"address_verification_id": msg.VerificationID,
			"address_verified_at":     msg.Timestamp,
		}
	case ResultRejected:
		next = models.KYCStatusAddressRejected
		fields = map[string]interface{}{
			"address_verification_id": msg.VerificationID,
			"address_rejected_at":     msg.Timestamp,
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResult, msg.Result)
	}

	if err := s.transition(p, next, fields); err != nil {
		return err
	}

	if msg.Result == ResultSuccess {
		return s.enqueueBackgroundCheck(p.ID)
	}
	return nil
}

// SubmitManualBackgroundCheck applies a human reviewer's resolution for a
// profile in manual review. A passed resolution moves on to the welcome flow.
func (s *KYCService) SubmitManualBackgroundCheck(msg ManualBackgroundCheckMessage) error {
	p, err := s.profiles.FindByID(msg.ProfileID)
	if err != nil {
		return err
	}

	var next models.KYCStatus
	var fields map[string]interface{}
	switch msg.Resolution {
	case ResolutionPassed:
		next = models.KYCStatusBackgroundCheckPassed
		fields = map[string]interface{}{
			"background_check_validator_id": msg.ValidatorID,
			"background_check_passed_at":    msg.Timestamp,
		}
	case ResolutionRejected:
		next = models.KYCStatusBackgroundCheckRejected
		fields = map[string]interface{}{
			"background_check_validator_id": msg.ValidatorID,
			"background_check_rejected_at":  msg.Timestamp,
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResult, msg.Resolution)
	}

	if err := s.transition(p, next, fields); err != nil {
		return err
	}

	if msg.Resolution == ResolutionPassed {
		if _, err := s.jobs.Enqueue(queue.JobTypeWelcomeEmail, WelcomeEmailJobPayload{ProfileID: p.ID}); err != nil {
			return fmt.Errorf("failed to enqueue welcome email: %w", err)
		}
	}
	return nil
}

// ManualReviewWorklist returns the profiles currently awaiting manual review
func (s *KYCService) ManualReviewWorklist() ([]models.Profile, error) {
	return s.profiles.ListByStatus(models.KYCStatusBackgroundCheckManualReview)
}

// transition validates the proposed status against the graph and applies it
// with the optimistic current-status check.
func (s *KYCService) transition(p *models.Profile, next models.KYCStatus, fields map[string]interface{}) error {
	skips := s.policy.SkipsAddressVerification(p.Country)
	if !kycdomain.IsValidTransition(p.KYCStatus, next, skips) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.KYCStatus, next)
	}
	return s.profiles.ApplyTransition(p.ID, p.KYCStatus, next, fields)
}

func (s *KYCService) enqueueBackgroundCheck(profileID uuid.UUID) error {
	jobID, err := s.jobs.Enqueue(queue.JobTypeBackgroundCheck, BackgroundCheckJobPayload{ProfileID: profileID})
	if err != nil {
		return fmt.Errorf("failed to enqueue background check: %w", err)
	}
	log.Printf("Enqueued background check job %s for profile %s", jobID, profileID)
	return nil
}
