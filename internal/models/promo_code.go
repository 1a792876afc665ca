package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromoCode is a one-off welcome code issued when a profile from a promo
// jurisdiction completes KYC. At most one code exists per profile and it is
// never mutated after creation.
type PromoCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"profile_id"`
	Profile   Profile   `gorm:"foreignKey:ProfileID" json:"-"`
	Code      string    `gorm:"type:varchar(80);not null" json:"code"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate assigns a UUID when one was not provided
func (p *PromoCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
