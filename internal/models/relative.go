package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Relative represents a dependent person declared under a profile. Relatives
// carry a political-influence flag used during manual review but have no
// lifecycle coupling with the profile's KYC status.
type Relative struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProfileID          uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	Profile            Profile   `gorm:"foreignKey:ProfileID" json:"-"`
	FirstName          string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName           string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Relationship       string    `gorm:"type:varchar(50);not null" json:"relationship"`
	PoliticalInfluence bool      `gorm:"default:false" json:"political_influence"`
	CreatedAt          time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate assigns a UUID when one was not provided
func (r *Relative) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
