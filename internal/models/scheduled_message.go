package models

import "time"

// ScheduledMessage statuses. A pending row makes exactly one terminal
// transition, to sent or to cancelled.
const (
	ScheduledPending   = "pending"
	ScheduledSent      = "sent"
	ScheduledCancelled = "cancelled"
)

// ScheduledMessage is a persisted promise to deliver MessageContent to an
// account at or after ScheduledFor. The sweep only acts on rows still in
// status=pending, which is the sole guard against duplicate sends under
// at-least-once job delivery.
type ScheduledMessage struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	AccountID      uint      `gorm:"not null;index"`
	GoalID         *uint     `gorm:"index"`
	ScheduledFor   time.Time `gorm:"not null;index"`
	MessageContent string    `gorm:"type:text;not null"`
	Status         string    `gorm:"size:16;default:pending;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
