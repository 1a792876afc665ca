// Package screening implements the automated background check: a sanctions
// (OFAC) lookup and a politically-exposed-person lookup against external proxy
// services, and the decision between an automated pass and manual review.
package screening

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/veripath/backend/internal/config"
	kycdomain "github.com/veripath/backend/internal/kyc"
	"github.com/veripath/backend/internal/models"
	"github.com/veripath/backend/internal/queue"
	kycsvc "github.com/veripath/backend/internal/services/kyc"
	"github.com/veripath/backend/internal/services/profile"
)

// ErrScreeningUnavailable is returned when a check cannot be completed at all
// (missing configuration, unreachable proxy, malformed response). It is never
// interpreted as a pass or a hit; the caller leaves the profile untouched so
// the operation can be retried.
var ErrScreeningUnavailable = errors.New("screening check unavailable")

// Screening results as reported by the proxy services
const (
	resultClear = "clear"

	requestOrigin = "kycService"
)

// checkResponse is the response shape shared by both proxies
type checkResponse struct {
	Result string `json:"result"`
}

// ScreeningService orchestrates the background check for a profile whose
// identity has been confirmed.
type ScreeningService struct {
	profiles   *profile.ProfileService
	policy     *kycdomain.CountryPolicy
	jobs       queue.Enqueuer
	cfg        config.ScreeningConfig
	httpClient *http.Client
}

// NewScreeningService creates a new screening service
func NewScreeningService(profiles *profile.ProfileService, policy *kycdomain.CountryPolicy, jobs queue.Enqueuer, cfg config.ScreeningConfig) *ScreeningService {
	return &ScreeningService{
		profiles:   profiles,
		policy:     policy,
		jobs:       jobs,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RunBackgroundCheck performs both screening checks for the profile and
// records the outcome. Both checks must come back clear for an automated
// pass; any hit routes the profile to manual review. A check that cannot be
// completed fails the whole operation with the profile status unchanged.
func (s *ScreeningService) RunBackgroundCheck(ctx context.Context, profileID uuid.UUID) error {
	p, err := s.profiles.FindByID(profileID)
	if err != nil {
		return err
	}

	skips := s.policy.SkipsAddressVerification(p.Country)

	// A passed profile with no welcome outcome recorded means a previous run
	// wrote the status but lost the welcome job (the enqueue failed after the
	// transition committed). Re-enqueue instead of rejecting the re-trigger,
	// or the profile would stall at background_check_passed.
	if p.KYCStatus == models.KYCStatusBackgroundCheckPassed &&
		p.WelcomeEmailDeliveredAt == nil && p.WelcomeEmailDeliveryFailedAt == nil {
		if _, err := s.jobs.Enqueue(queue.JobTypeWelcomeEmail, kycsvc.WelcomeEmailJobPayload{ProfileID: p.ID}); err != nil {
			return fmt.Errorf("failed to enqueue welcome email: %w", err)
		}
		log.Printf("Re-enqueued lost welcome email for profile %s", p.ID)
		return nil
	}

	// A profile is only screenable while a screening outcome is still a legal
	// next status; this rejects duplicate triggers for already-screened
	// profiles.
	if !kycdomain.IsValidTransition(p.KYCStatus, models.KYCStatusBackgroundCheckManualReview, skips) {
		return fmt.Errorf("%w: %s -> %s", kycsvc.ErrInvalidTransition, p.KYCStatus, models.KYCStatusBackgroundCheckPassed)
	}

	sanctionsClear, err := s.checkOFACListInclusion(ctx, p)
	if err != nil {
		return err
	}

	pepClear, err := s.checkPEPListInclusion(ctx, p)
	if err != nil {
		return err
	}

	now := time.Now()
	if sanctionsClear && pepClear {
		err := s.profiles.ApplyTransition(p.ID, p.KYCStatus, models.KYCStatusBackgroundCheckPassed, map[string]interface{}{
			"background_check_passed_at":    now,
			"background_check_validator_id": models.BackgroundCheckValidatorAutomated,
		})
		if err != nil {
			return err
		}

		if _, err := s.jobs.Enqueue(queue.JobTypeWelcomeEmail, kycsvc.WelcomeEmailJobPayload{ProfileID: p.ID}); err != nil {
			return fmt.Errorf("failed to enqueue welcome email: %w", err)
		}
		log.Printf("Background check passed for profile %s", p.ID)
		return nil
	}

	log.Printf("Background check for profile %s requires manual review (sanctions clear: %t, PEP clear: %t)", p.ID, sanctionsClear, pepClear)
	return s.profiles.ApplyTransition(p.ID, p.KYCStatus, models.KYCStatusBackgroundCheckManualReview, map[string]interface{}{
		"background_check_tried_at": now,
	})
}

// checkOFACListInclusion screens the profile against the sanctions list proxy
func (s *ScreeningService) checkOFACListInclusion(ctx context.Context, p *models.Profile) (bool, error) {
	if s.cfg.OFACProxyURL == "" {
		return false, fmt.Errorf("%w: OFAC proxy URL not configured", ErrScreeningUnavailable)
	}

	payload := map[string]interface{}{
		"origin":        requestOrigin,
		"profile_id":    p.ID.String(),
		"type":          "individual",
		"program":       "all",
		"first_name":    p.FirstName,
		"last_name":     p.LastName,
		"date_of_birth": p.DateOfBirth,
		"address":       p.Address,
		"city":          p.City,
		"state":         p.State,
		"zip_code":      p.ZipCode,
		"country":       p.Country,
		"nationality":   p.Nationality,
	}

	return s.postCheck(ctx, s.cfg.OFACProxyURL, s.cfg.OFACProxyAPIKey, payload)
}

// checkPEPListInclusion screens the profile against the PEP list proxy
func (s *ScreeningService) checkPEPListInclusion(ctx context.Context, p *models.Profile) (bool, error) {
	if s.cfg.PEPProxyURL == "" {
		return false, fmt.Errorf("%w: PEP proxy URL not configured", ErrScreeningUnavailable)
	}

	payload := map[string]interface{}{
		"origin":        requestOrigin,
		"profile_id":    p.ID.String(),
		"first_name":    p.FirstName,
		"last_name":     p.LastName,
		"date_of_birth": p.DateOfBirth,
		"nationality":   p.Nationality,
	}

	return s.postCheck(ctx, s.cfg.PEPProxyURL, s.cfg.PEPProxyAPIKey, payload)
}

// postCheck posts a screening request and reports whether the result was clear
func (s *ScreeningService) postCheck(ctx context.Context, url, apiKey string, payload map[string]interface{}) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal screening request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrScreeningUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrScreeningUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: proxy returned status %d", ErrScreeningUnavailable, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrScreeningUnavailable, err)
	}

	var result checkResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, fmt.Errorf("%w: invalid proxy response: %v", ErrScreeningUnavailable, err)
	}

	return result.Result == resultClear, nil
}
