package models

import "time"

// EvaluationLog is the operator-facing audit trail of proactive evaluation
// outcomes. One row per decision engine run; RawDecision is populated only
// when the reasoning engine returned something that failed validation, so
// the raw output can be inspected later.
type EvaluationLog struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	AccountID   uint   `gorm:"not null;index"`
	Action      string `gorm:"size:16;not null"`
	Reasoning   string `gorm:"type:text"`
	RawDecision string `gorm:"type:text"`
	CreatedAt   time.Time
}
