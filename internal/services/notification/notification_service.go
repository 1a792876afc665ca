// Package notification implements the completion step of the onboarding
// workflow: the welcome notification, the jurisdiction-specific promo code,
// and the final move to the completed status.
package notification

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
	kycsvc "github.com/veripath/backend/internal/services/kyc"
	"github.com/veripath/backend/internal/services/profile"
	"github.com/veripath/backend/internal/services/promo"
)

// ErrNotificationUnavailable is returned when the mail service cannot be
// reached at all. The profile is left untouched so the operation can be
// retried; this is distinct from a delivery failure, which still completes
// the profile.
var ErrNotificationUnavailable = errors.New("notification service unavailable")

// Welcome template ids understood by the mail service
const (
	welcomeTemplateID      = "KYCWelcomeEmailTemplate"
	promoWelcomeTemplateID = "SpecialKYCWelcomeEmailTemplate"

	resultDelivered = "delivered"

	requestOrigin = "kycService"
)

// deliveryResponse is the mail service response shape
type deliveryResponse struct {
	Result string `json:"result"`
}

// NotificationService sends the welcome notification after a passed background
// check and finalizes the profile. Delivery failure is recorded but never
// blocks completion.
type NotificationService struct {
	profiles   *profile.ProfileService
	promoCodes *promo.PromoCodeService
	policy     *kycdomain.CountryPolicy
	cfg        config.MailConfig
	httpClient *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(profiles *profile.ProfileService, promoCodes *promo.PromoCodeService, policy *kycdomain.CountryPolicy, cfg config.MailConfig) *NotificationService {
	return &NotificationService{
		profiles:   profiles,
		promoCodes: promoCodes,
		policy:     policy,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendWelcomeNotification issues the jurisdiction promo code where due, sends
// the welcome notification and moves the profile to completed. The profile
// completes whether or not the notification was delivered; only the recorded
// timestamp differs.
func (s *NotificationService) SendWelcomeNotification(ctx context.Context, profileID uuid.UUID) error {
	p, err := s.profiles.FindByID(profileID)
	if err != nil {
		return err
	}

	skips := s.policy.SkipsAddressVerification(p.Country)
	if !kycdomain.IsValidTransition(p.KYCStatus, models.KYCStatusCompleted, skips) {
		// Covers already-completed profiles: the welcome flow never re-runs.
		return fmt.Errorf("%w: %s -> %s", kycsvc.ErrInvalidTransition, p.KYCStatus, models.KYCStatusCompleted)
	}

	templateID := welcomeTemplateID
	if s.policy.PromoJurisdiction(p.Country) {
		if _, err := s.promoCodes.Create(p.ID); err != nil {
			return err
		}
		templateID = promoWelcomeTemplateID
	}

	delivered, err := s.deliver(ctx, templateID, p)
	if err != nil {
		return err
	}

	now := time.Now()
	fields := map[string]interface{}{"welcome_email_delivered_at": now}
	if !delivered {
		log.Printf("Welcome notification delivery failed for profile %s", p.ID)
		fields = map[string]interface{}{"welcome_email_delivery_failed_at": now}
	}

	return s.profiles.ApplyTransition(p.ID, p.KYCStatus, models.KYCStatusCompleted, fields)
}

// deliver posts the notification request to the mail service and reports
// whether it was delivered
func (s *NotificationService) deliver(ctx context.Context, templateID string, p *models.Profile) (bool, error) {
	if s.cfg.ServiceURL == "" {
		return false, fmt.Errorf("%w: mail service URL not configured", ErrNotificationUnavailable)
	}

	payload := map[string]interface{}{
		"origin":     requestOrigin,
		"templateId": templateID,
		"id":         p.ID.String(),
		"firstName":  p.FirstName,
		"lastName":   p.LastName,
		"email":      p.Email,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal notification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ServiceURL, bytes.NewBuffer(body))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNotificationUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNotificationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: mail service returned status %d", ErrNotificationUnavailable, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNotificationUnavailable, err)
	}

	var result deliveryResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, fmt.Errorf("%w: invalid mail service response: %v", ErrNotificationUnavailable, err)
	}

	return result.Result == resultDelivered, nil
}
