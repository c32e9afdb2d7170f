package db

import (
	"fmt"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Account{},
		&models.Preference{},
		&models.Goal{},
		&models.GoalData{},
		&models.Message{},
		&models.ScheduledMessage{},
		&models.EvaluationLog{},
		&models.Job{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
