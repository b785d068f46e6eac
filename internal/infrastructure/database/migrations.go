package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/projectsync/projectsync/internal/domain/models"
)

// AutoMigrate creates or updates the schema for all models on a GORM
// connection. Exposed at the package level so tests can migrate an
// in-memory database without a Database wrapper.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Repo{},
	)
}

// RunMigrations brings the schema up to date
func (d *Database) RunMigrations() error {
	d.log.Info("Running schema migrations")

	if err := AutoMigrate(d.db); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	d.log.Info("Schema migrations completed")
	return nil
}
