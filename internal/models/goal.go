package models

import "time"

// Goal lifecycle statuses.
const (
	GoalActive    = "active"
	GoalPaused    = "paused"
	GoalCompleted = "completed"
	GoalAbandoned = "abandoned"
)

// Goal is a tracked objective belonging to exactly one account.
type Goal struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	AccountID uint   `gorm:"not null;index"`
	Title     string `gorm:"type:text;not null"`
	Status    string `gorm:"size:16;default:active;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Data *GoalData `gorm:"foreignKey:GoalID"`
}

// GoalData carries the goal's free-form progress state (events array +
// snapshot object). Its schema is owned by the reasoning engine; the core
// treats it as opaque JSON.
type GoalData struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	GoalID    uint   `gorm:"uniqueIndex;not null"`
	AgentData string `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name; the default pluralizer mangles "data".
func (GoalData) TableName() string { return "goal_data" }
