package models

import "time"

// Job statuses.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// Job is one unit of background work pulled by the worker pool. DedupKey
// carries the queue's de-duplication contract: a second enqueue with the
// same key is suppressed, so re-delivery of a cron tick does not duplicate
// work within its time bucket.
type Job struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:64;not null;index"`
	Args        string  `gorm:"type:json"`
	DedupKey    *string `gorm:"uniqueIndex;size:128"`
	Status      string  `gorm:"size:16;default:queued;index"`
	Attempts    int     `gorm:"default:0"`
	MaxAttempts int     `gorm:"default:3"`
	LastError   string  `gorm:"type:text"`
	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
}
