package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable entry in an account's conversation log.
// Append-only; ordering by CreatedAt is the sole query need.
type Message struct {
	ID                uint    `gorm:"primaryKey;autoIncrement"`
	AccountID         uint    `gorm:"not null;index"`
	GoalID            *uint   `gorm:"index"`
	Role              string  `gorm:"size:16;not null"`
	Content           string  `gorm:"type:text;not null"`
	TelegramMessageID *int64
	CreatedAt         time.Time
}
