package store

import (
	"fmt"
	"time"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/gorm"
)

// CreateScheduledMessage persists a promise to send content to an account
// at or after scheduledFor.
func CreateScheduledMessage(db *gorm.DB, accountID uint, goalID *uint, scheduledFor time.Time, content string) (*models.ScheduledMessage, error) {
	if content == "" {
		return nil, fmt.Errorf("store: scheduled message content is required: %w", ErrInvalid)
	}

	sm := models.ScheduledMessage{
		AccountID:      accountID,
		GoalID:         goalID,
		ScheduledFor:   scheduledFor,
		MessageContent: content,
		Status:         models.ScheduledPending,
	}
	if err := db.Create(&sm).Error; err != nil {
		return nil, fmt.Errorf("store: create scheduled message: %w", err)
	}
	return &sm, nil
}

// DueScheduledMessages returns pending rows whose time has come, earliest
// due first. The status filter here is the sweep's sole idempotency guard:
// rows already transitioned by a prior or concurrent run are not selected.
func DueScheduledMessages(db *gorm.DB, now time.Time) ([]models.ScheduledMessage, error) {
	var msgs []models.ScheduledMessage
	if err := db.Where("status = ? AND scheduled_for <= ?", models.ScheduledPending, now).
		Order("scheduled_for ASC, id ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("store: due scheduled messages: %w", err)
	}
	return msgs, nil
}

// PendingScheduledMessages returns an account's not-yet-delivered rows.
func PendingScheduledMessages(db *gorm.DB, accountID uint) ([]models.ScheduledMessage, error) {
	var msgs []models.ScheduledMessage
	if err := db.Where("account_id = ? AND status = ?", accountID, models.ScheduledPending).
		Order("scheduled_for ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("store: pending scheduled messages for account %d: %w", accountID, err)
	}
	return msgs, nil
}

// MarkScheduledSent transitions a pending row to sent. The update is
// status-gated: if another run already resolved the row, this reports
// ErrNotFound and changes nothing, making the transition a one-way door.
func MarkScheduledSent(db *gorm.DB, id uint) error {
	return transitionScheduled(db, id, models.ScheduledSent)
}

// MarkScheduledCancelled transitions a pending row to cancelled.
func MarkScheduledCancelled(db *gorm.DB, id uint) error {
	return transitionScheduled(db, id, models.ScheduledCancelled)
}

func transitionScheduled(db *gorm.DB, id uint, status string) error {
	result := db.Model(&models.ScheduledMessage{}).
		Where("id = ? AND status = ?", id, models.ScheduledPending).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("store: mark scheduled message %d %s: %w", id, status, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: scheduled message %d not pending: %w", id, ErrNotFound)
	}
	return nil
}
