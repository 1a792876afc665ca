package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KYCStatus represents where a profile currently sits in the onboarding workflow
type KYCStatus string

const (
	KYCStatusPending                     KYCStatus = "pending"
	KYCStatusIDVerified                  KYCStatus = "id_verified"
	KYCStatusIDRejected                  KYCStatus = "id_rejected"
	KYCStatusAddressVerified             KYCStatus = "address_verified"
	KYCStatusAddressRejected             KYCStatus = "address_rejected"
	KYCStatusBackgroundCheckPassed       KYCStatus = "background_check_passed"
	KYCStatusBackgroundCheckManualReview KYCStatus = "background_check_manual_review"
	KYCStatusBackgroundCheckRejected     KYCStatus = "background_check_rejected"
	KYCStatusCompleted                   KYCStatus = "completed"
)

// IncomeSource represents the declared source of income for a profile
type IncomeSource string

const (
	IncomeSourceSalary      IncomeSource = "salary"
	IncomeSourceBusiness    IncomeSource = "business"
	IncomeSourceInvestments IncomeSource = "investments"
	IncomeSourceInheritance IncomeSource = "inheritance"
	IncomeSourceOther       IncomeSource = "other"
)

// IsValid reports whether the income source is one of the enumerated categories
func (s IncomeSource) IsValid() bool {
	switch s {
	case IncomeSourceSalary, IncomeSourceBusiness, IncomeSourceInvestments, IncomeSourceInheritance, IncomeSourceOther:
		return true
	default:
		return false
	}
}

// BackgroundCheckValidatorAutomated is recorded as the validator id when the
// screening checks pass without human involvement.
const BackgroundCheckValidatorAutomated = "automated"

// Profile represents a customer going through KYC onboarding.
//
// Identity fields are set once at creation. The verification timestamps and ids
// are each written exactly once, by the transition they belong to; the status
// column is the state-machine cursor and only ever moves along edges allowed by
// the kyc package.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FirstName   string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Address     string    `gorm:"type:text" json:"address"`
	City        string    `gorm:"type:varchar(100)" json:"city"`
	State       string    `gorm:"type:varchar(100)" json:"state"`
	ZipCode     string    `gorm:"type:varchar(20)" json:"zip_code"`
	Country     string    `gorm:"type:varchar(100);not null;default:'unknown'" json:"country"`
	Nationality string    `gorm:"type:varchar(100);not null;default:'unknown'" json:"nationality"`
	DateOfBirth string    `gorm:"type:varchar(30)" json:"date_of_birth"`
	PhoneNumber string    `gorm:"type:varchar(20)" json:"phone_number"`
	Email       string    `gorm:"type:varchar(255);not null" json:"email"`
	SSN         *string   `gorm:"type:varchar(20)" json:"ssn,omitempty"`
	TIN         *string   `gorm:"type:varchar(20)" json:"tin,omitempty"`

	KYCStatus KYCStatus `gorm:"type:varchar(40);not null;default:'pending';index" json:"kyc_status"`

	IDVerificationID *string    `gorm:"type:varchar(255)" json:"id_verification_id,omitempty"`
	IDVerifiedAt     *time.Time `json:"id_verified_at,omitempty"`
	IDRejectedAt     *time.Time `json:"id_rejected_at,omitempty"`

	AddressVerificationID *string    `gorm:"type:varchar(255)" json:"address_verification_id,omitempty"`
	AddressVerifiedAt     *time.Time `json:"address_verified_at,omitempty"`
	AddressRejectedAt     *time.Time `json:"address_rejected_at,omitempty"`

	BackgroundCheckPassedAt    *time.Time `json:"background_check_passed_at,omitempty"`
	BackgroundCheckTriedAt     *time.Time `json:"background_check_tried_at,omitempty"`
	BackgroundCheckValidatorID *string    `gorm:"type:varchar(255)" json:"background_check_validator_id,omitempty"`
	BackgroundCheckRejectedAt  *time.Time `json:"background_check_rejected_at,omitempty"`

	WelcomeEmailDeliveredAt      *time.Time `json:"welcome_email_delivered_at,omitempty"`
	WelcomeEmailDeliveryFailedAt *time.Time `json:"welcome_email_delivery_failed_at,omitempty"`

	Occupation     *string       `gorm:"type:varchar(255)" json:"occupation,omitempty"`
	Employer       *string       `gorm:"type:varchar(255)" json:"employer,omitempty"`
	SourceOfIncome *IncomeSource `gorm:"type:varchar(30)" json:"source_of_income,omitempty"`

	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID when one was not provided
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
