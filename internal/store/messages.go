package store

import (
	"fmt"

	"github.com/parth-ai/parth/internal/models"
	"gorm.io/gorm"
)

// MessageOpts holds optional parameters for logging a message.
type MessageOpts struct {
	GoalID            *uint
	TelegramMessageID *int64
}

// CreateMessage appends one row to an account's conversation log.
func CreateMessage(db *gorm.DB, accountID uint, role, content string, opts MessageOpts) (*models.Message, error) {
	if role != models.RoleUser && role != models.RoleAssistant {
		return nil, fmt.Errorf("store: message role %q: %w", role, ErrInvalid)
	}
	if content == "" {
		return nil, fmt.Errorf("store: message content is required: %w", ErrInvalid)
	}

	msg := models.Message{
		AccountID:         accountID,
		GoalID:            opts.GoalID,
		Role:              role,
		Content:           content,
		TelegramMessageID: opts.TelegramMessageID,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("store: create message: %w", err)
	}
	return &msg, nil
}

// RecentMessages returns up to limit of the account's most recent messages
// in chronological order (oldest first).
func RecentMessages(db *gorm.DB, accountID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	var msgs []models.Message
	if err := db.Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("store: recent messages for account %d: %w", accountID, err)
	}

	// Query returns newest-first; reverse to chronological.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
