package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createRelativesAndPromoCodesTablesMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_relatives_promo_codes_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS relatives (
					id UUID PRIMARY KEY,
					profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					first_name VARCHAR(100) NOT NULL,
					last_name VARCHAR(100) NOT NULL,
					relationship VARCHAR(50) NOT NULL,
					political_influence BOOLEAN DEFAULT FALSE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_relatives_profile_id ON relatives(profile_id);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS promo_codes (
					id UUID PRIMARY KEY,
					profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
					code VARCHAR(80) NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_codes_profile_id ON promo_codes(profile_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec(`DROP TABLE IF EXISTS promo_codes`).Error; err != nil {
				return err
			}
			return tx.Exec(`DROP TABLE IF EXISTS relatives`).Error
		},
	}
}
