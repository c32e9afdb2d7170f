package models

import "time"

// Account is a person using Parth, identified internally by ID and
// externally by their Telegram chat ID. Accounts are created on first
// contact and never deleted by this subsystem.
type Account struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	TelegramID int64  `gorm:"uniqueIndex;not null"`
	Timezone   string `gorm:"size:64"`
	IsActive   bool   `gorm:"default:true;index"`
	QuietHours string `gorm:"size:16"` // "HH:MM-HH:MM" local window, empty = none
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Goals             []Goal             `gorm:"foreignKey:AccountID"`
	Messages          []Message          `gorm:"foreignKey:AccountID"`
	ScheduledMessages []ScheduledMessage `gorm:"foreignKey:AccountID"`
	Preference        *Preference        `gorm:"foreignKey:AccountID"`
}

// Preference holds one opaque structured blob per account (quiet hours
// overrides, communication style, learned timing patterns). The schema is
// owned by the reasoning engine; updates are shallow merges, not overwrites.
type Preference struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	AccountID uint   `gorm:"uniqueIndex;not null"`
	AgentData string `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
