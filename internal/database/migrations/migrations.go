package migrations

import (
	"log"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// RunMigrations runs all database migrations in order
func RunMigrations(db *gorm.DB) error {
	migrationsList := []*gormigrate.Migration{
		createProfilesTableMigration(),
		createJobsTableMigration(),
		createRelativesAndPromoCodesTablesMigration(),
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, migrationsList)

	if err := m.Migrate(); err != nil {
		log.Printf("Could not migrate: %v", err)
		return err
	}
	log.Printf("Migrations ran successfully")
	return nil
}
