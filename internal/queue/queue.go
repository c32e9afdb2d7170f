// Package queue is a database-backed job queue with deduplicated
// enqueues, atomic claims and bounded retries, plus the cron triggers
// that feed it.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parth-ai/parth/internal/models"
)

// Enqueue creates a queued job. A non-empty dedupKey suppresses
// duplicates: if a job with the same key already exists, Enqueue returns
// (nil, nil) and writes nothing. This is the at-most-once guard for
// re-delivered cron ticks.
func Enqueue(db *gorm.DB, name string, args any, dedupKey string) (*models.Job, error) {
	if name == "" {
		return nil, fmt.Errorf("queue: job name is required")
	}
	blob, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal args: %w", err)
	}

	job := models.Job{Name: name, Args: string(blob), Status: models.JobQueued}
	if dedupKey != "" {
		job.DedupKey = &dedupKey
	}
	if err := db.Create(&job).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue: enqueue %s: %w", name, err)
	}
	return &job, nil
}

// Claim atomically hands the oldest queued job to the caller by
// transitioning it from queued to running inside a transaction. Exactly one
// worker wins a given job; no queued work returns gorm.ErrRecordNotFound.
func Claim(db *gorm.DB) (*models.Job, error) {
	var claimed models.Job

	err := db.Transaction(func(tx *gorm.DB) error {
		query := tx.Where("status = ?", models.JobQueued)
		// SQLite has no row locks; the status-gated update below still
		// guarantees a single winner there.
		if tx.Dialector.Name() != "sqlite" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		result := query.
			Order("created_at ASC, id ASC").
			Limit(1).
			Find(&claimed)
		if result.Error != nil {
			return fmt.Errorf("queue: find queued job: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("queue: no queued jobs: %w", gorm.ErrRecordNotFound)
		}

		now := time.Now().UTC()
		update := tx.Model(&models.Job{}).
			Where("id = ? AND status = ?", claimed.ID, models.JobQueued).
			Updates(map[string]interface{}{
				"status":     models.JobRunning,
				"attempts":   claimed.Attempts + 1,
				"started_at": now,
			})
		if update.Error != nil {
			return fmt.Errorf("queue: claim job %d: %w", claimed.ID, update.Error)
		}
		if update.RowsAffected == 0 {
			return fmt.Errorf("queue: job %d raced away: %w", claimed.ID, gorm.ErrRecordNotFound)
		}
		claimed.Status = models.JobRunning
		claimed.Attempts++
		claimed.StartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

// markDone finishes a job successfully.
func markDone(db *gorm.DB, jobID uint) error {
	now := time.Now().UTC()
	return db.Model(&models.Job{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      models.JobDone,
			"finished_at": now,
		}).Error
}

// markFailed records a failed run. With attempts left the job goes back
// to queued for another worker; otherwise it lands in failed for good.
func markFailed(db *gorm.DB, job *models.Job, runErr error) error {
	status := models.JobFailed
	if job.Attempts < job.MaxAttempts {
		status = models.JobQueued
	}
	now := time.Now().UTC()
	return db.Model(&models.Job{}).Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":      status,
			"last_error":  runErr.Error(),
			"finished_at": now,
		}).Error
}

// isDuplicateKey detects a unique-constraint violation across the MySQL
// and SQLite drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
