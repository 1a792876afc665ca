package profile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/veripath/backend/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrProfileNotFound is returned when the referenced profile does not exist
	ErrProfileNotFound = errors.New("profile not found")

	// ErrStatusConflict is returned when a transition write lost against a
	// concurrent update; the profile was no longer in the expected status.
	ErrStatusConflict = errors.New("profile status changed concurrently")

	// ErrInvalidIncomeSource is returned for income sources outside the enumerated set
	ErrInvalidIncomeSource = errors.New("invalid source of income")
)

// ProfileService is the store for profile aggregates. All status mutations go
// through ApplyTransition so the per-profile serialization guarantee holds.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a new profile service
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// Create stores a new profile. The KYC status always starts at pending no
// matter what the caller supplied.
func (s *ProfileService) Create(p *models.Profile) error {
	p.KYCStatus = models.KYCStatusPending
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

// FindByID fetches a profile by id
func (s *ProfileService) FindByID(id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("error finding profile: %w", err)
	}
	return &p, nil
}

// List returns all profiles
func (s *ProfileService) List() ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.Order("created_at").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	return profiles, nil
}

// ListByStatus returns all profiles currently in the given KYC status
func (s *ProfileService) ListByStatus(status models.KYCStatus) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.Where("kyc_status = ?", status).Order("created_at").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("error listing profiles by status: %w", err)
	}
	return profiles, nil
}

// AddOccupationData sets the optional enrichment fields. Occupation data is
// independent of the KYC state machine and may arrive at any time.
func (s *ProfileService) AddOccupationData(id uuid.UUID, occupation, employer string, sourceOfIncome models.IncomeSource) error {
	if !sourceOfIncome.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidIncomeSource, sourceOfIncome)
	}

	if _, err := s.FindByID(id); err != nil {
		return err
	}

	updates := map[string]interface{}{
		"occupation":       occupation,
		"employer":         employer,
		"source_of_income": sourceOfIncome,
	}
	if err := s.db.Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("error updating occupation data: %w", err)
	}
	return nil
}

// AddRelative records a related person for a profile
func (s *ProfileService) AddRelative(profileID uuid.UUID, r *models.Relative) error {
	if _, err := s.FindByID(profileID); err != nil {
		return err
	}

	r.ProfileID = profileID
	if err := s.db.Create(r).Error; err != nil {
		return fmt.Errorf("error creating relative: %w", err)
	}
	return nil
}

// ListRelatives returns the relatives recorded for a profile
func (s *ProfileService) ListRelatives(profileID uuid.UUID) ([]models.Relative, error) {
	if _, err := s.FindByID(profileID); err != nil {
		return nil, err
	}

	var relatives []models.Relative
	if err := s.db.Where("profile_id = ?", profileID).Order("created_at").Find(&relatives).Error; err != nil {
		return nil, fmt.Errorf("error listing relatives: %w", err)
	}
	return relatives, nil
}

// ApplyTransition moves a profile to a new status, writing the given fields in
// the same statement. The update is guarded by the expected current status:
// when a concurrent writer got there first, zero rows match and
// ErrStatusConflict is returned with nothing written. Fields outside the
// update set are carried forward untouched, so historical verification data is
// never clobbered.
func (s *ProfileService) ApplyTransition(id uuid.UUID, expected, next models.KYCStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"kyc_status": next}
	for k, v := range fields {
		updates[k] = v
	}

	result := s.db.Model(&models.Profile{}).
		Where("id = ? AND kyc_status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("error applying transition to %s: %w", next, result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the profile vanished or its status moved under us.
		if _, err := s.FindByID(id); err != nil {
			return err
		}
		return fmt.Errorf("%w: expected %s", ErrStatusConflict, expected)
	}
	return nil
}
