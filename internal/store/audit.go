package store

import (
	"fmt"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/gorm"
)

// LogEvaluation records the outcome of one proactive evaluation run. raw is
// only supplied when the reasoning engine's output failed validation.
func LogEvaluation(db *gorm.DB, accountID uint, action, reasoning, raw string) error {
	entry := models.EvaluationLog{
		AccountID:   accountID,
		Action:      action,
		Reasoning:   reasoning,
		RawDecision: raw,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("store: log evaluation for account %d: %w", accountID, err)
	}
	return nil
}
