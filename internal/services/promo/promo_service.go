package promo

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/veripath/backend/internal/models"
	"gorm.io/gorm"
)

// PromoCodeService issues welcome promo codes for completed profiles from
// promo jurisdictions.
type PromoCodeService struct {
	db *gorm.DB
}

// NewPromoCodeService creates a new promo code service
func NewPromoCodeService(db *gorm.DB) *PromoCodeService {
	return &PromoCodeService{db: db}
}

// Create issues a promo code for the profile. Issuance is idempotent: when a
// code already exists it is returned unchanged, so a profile can never hold
// more than one.
func (s *PromoCodeService) Create(profileID uuid.UUID) (*models.PromoCode, error) {
	if existing, err := s.FindByProfile(profileID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	promoCode := models.PromoCode{
		ProfileID: profileID,
		Code:      code,
	}
	if err := s.db.Create(&promoCode).Error; err != nil {
		return nil, fmt.Errorf("error creating promo code: %w", err)
	}
	return &promoCode, nil
}

// FindByProfile returns the promo code issued to a profile, if any
func (s *PromoCodeService) FindByProfile(profileID uuid.UUID) (*models.PromoCode, error) {
	var promoCode models.PromoCode
	err := s.db.Where("profile_id = ?", profileID).First(&promoCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error finding promo code: %w", err)
	}
	return &promoCode, nil
}

// generateCode produces a random 40-character hex code
func generateCode() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating promo code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
