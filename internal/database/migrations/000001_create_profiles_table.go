package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createProfilesTableMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_profiles_table",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS profiles (
					id UUID PRIMARY KEY,
					first_name VARCHAR(100) NOT NULL,
					last_name VARCHAR(100) NOT NULL,
					address TEXT,
					city VARCHAR(100),
					state VARCHAR(100),
					zip_code VARCHAR(20),
					country VARCHAR(100) NOT NULL DEFAULT 'unknown',
					nationality VARCHAR(100) NOT NULL DEFAULT 'unknown',
					date_of_birth VARCHAR(30),
					phone_number VARCHAR(20),
					email VARCHAR(255) NOT NULL,
					ssn VARCHAR(20),
					tin VARCHAR(20),
					kyc_status VARCHAR(40) NOT NULL DEFAULT 'pending',
					id_verification_id VARCHAR(255),
					id_verified_at TIMESTAMP WITH TIME ZONE,
					id_rejected_at TIMESTAMP WITH TIME ZONE,
					address_verification_id VARCHAR(255),
					address_verified_at TIMESTAMP WITH TIME ZONE,
					address_rejected_at TIMESTAMP WITH TIME ZONE,
					background_check_passed_at TIMESTAMP WITH TIME ZONE,
					background_check_tried_at TIMESTAMP WITH TIME ZONE,
					background_check_validator_id VARCHAR(255),
					background_check_rejected_at TIMESTAMP WITH TIME ZONE,
					welcome_email_delivered_at TIMESTAMP WITH TIME ZONE,
					welcome_email_delivery_failed_at TIMESTAMP WITH TIME ZONE,
					occupation VARCHAR(255),
					employer VARCHAR(255),
					source_of_income VARCHAR(30),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX IF NOT EXISTS idx_profiles_kyc_status ON profiles(kyc_status);
				CREATE INDEX IF NOT EXISTS idx_profiles_deleted_at ON profiles(deleted_at);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`DROP TABLE IF EXISTS profiles`).Error
		},
	}
}
