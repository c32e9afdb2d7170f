package store

import (
	"errors"
	"fmt"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/gorm"
)

var goalStatuses = map[string]bool{
	models.GoalActive:    true,
	models.GoalPaused:    true,
	models.GoalCompleted: true,
	models.GoalAbandoned: true,
}

// CreateGoal creates a new active goal for an account.
func CreateGoal(db *gorm.DB, accountID uint, title string) (*models.Goal, error) {
	if title == "" {
		return nil, fmt.Errorf("store: goal title is required: %w", ErrInvalid)
	}
	goal := models.Goal{AccountID: accountID, Title: title, Status: models.GoalActive}
	if err := db.Create(&goal).Error; err != nil {
		return nil, fmt.Errorf("store: create goal: %w", err)
	}
	return &goal, nil
}

// GetGoal fetches one goal scoped to its owning account. A goal belonging
// to a different account is reported as not found, never leaked.
func GetGoal(db *gorm.DB, accountID, goalID uint) (*models.Goal, error) {
	var goal models.Goal
	err := db.Where("id = ? AND account_id = ?", goalID, accountID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store: goal %d: %w", goalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get goal %d: %w", goalID, err)
	}
	return &goal, nil
}

// ListGoals returns all of an account's goals, newest first.
func ListGoals(db *gorm.DB, accountID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := db.Where("account_id = ?", accountID).
		Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("store: list goals for account %d: %w", accountID, err)
	}
	return goals, nil
}

// ActiveGoals returns an account's active goals with their data blobs
// preloaded, oldest first.
func ActiveGoals(db *gorm.DB, accountID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := db.Preload("Data").
		Where("account_id = ? AND status = ?", accountID, models.GoalActive).
		Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("store: active goals for account %d: %w", accountID, err)
	}
	return goals, nil
}

// UpdateGoalStatus transitions a goal's lifecycle status.
func UpdateGoalStatus(db *gorm.DB, accountID, goalID uint, status string) error {
	if !goalStatuses[status] {
		return fmt.Errorf("store: goal status %q: %w", status, ErrInvalid)
	}
	result := db.Model(&models.Goal{}).
		Where("id = ? AND account_id = ?", goalID, accountID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("store: update goal %d status: %w", goalID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: goal %d: %w", goalID, ErrNotFound)
	}
	return nil
}

// GetGoalData returns the goal's opaque data blob, or an empty string if
// none has been written yet.
func GetGoalData(db *gorm.DB, goalID uint) (string, error) {
	var gd models.GoalData
	err := db.Where("goal_id = ?", goalID).First(&gd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: get goal data %d: %w", goalID, err)
	}
	return gd.AgentData, nil
}

// MergeGoalData shallow-merges patch into the goal's data blob inside one
// transaction. Last writer wins per top-level key.
func MergeGoalData(db *gorm.DB, goalID uint, patch map[string]interface{}) error {
	return mutateGoalData(db, goalID, func(blob string) (string, error) {
		return MergePatch(blob, patch)
	})
}

// AppendGoalEvent appends an event object to the goal data blob's events
// array inside one transaction.
func AppendGoalEvent(db *gorm.DB, goalID uint, event map[string]interface{}) error {
	return mutateGoalData(db, goalID, func(blob string) (string, error) {
		return appendToEvents(blob, event)
	})
}

// mutateGoalData runs a read-modify-write cycle on the goal's data row,
// creating the row on first write.
func mutateGoalData(db *gorm.DB, goalID uint, mutate func(string) (string, error)) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var gd models.GoalData
		err := tx.Where("goal_id = ?", goalID).First(&gd).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			blob, merr := mutate("")
			if merr != nil {
				return merr
			}
			return tx.Create(&models.GoalData{GoalID: goalID, AgentData: blob}).Error
		case err != nil:
			return err
		}

		blob, merr := mutate(gd.AgentData)
		if merr != nil {
			return merr
		}
		return tx.Model(&models.GoalData{}).Where("goal_id = ?", goalID).
			Update("agent_data", blob).Error
	})
	if err != nil {
		return fmt.Errorf("store: mutate goal data %d: %w", goalID, err)
	}
	return nil
}
