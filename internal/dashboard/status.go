package dashboard

import (
	"time"

	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/models"
)

// Status is the operator-facing health summary.
type Status struct {
	Accounts           int64   `json:"accounts"`
	ActiveGoals        int64   `json:"active_goals"`
	PendingScheduled   int64   `json:"pending_scheduled"`
	MessagesLast24h    int64   `json:"messages_last_24h"`
	EvaluationsLast24h int64   `json:"evaluations_last_24h"`
	NextScheduledSend  *string `json:"next_scheduled_send"`
}

// BuildStatus collects the counts for /api/status.
func BuildStatus(db *gorm.DB) (*Status, error) {
	var s Status
	dayAgo := time.Now().UTC().Add(-24 * time.Hour)

	if err := db.Model(&models.Account{}).Count(&s.Accounts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Goal{}).
		Where("status = ?", models.GoalActive).Count(&s.ActiveGoals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ScheduledMessage{}).
		Where("status = ?", models.ScheduledPending).Count(&s.PendingScheduled).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Message{}).
		Where("created_at >= ?", dayAgo).Count(&s.MessagesLast24h).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.EvaluationLog{}).
		Where("created_at >= ?", dayAgo).Count(&s.EvaluationsLast24h).Error; err != nil {
		return nil, err
	}

	var next models.ScheduledMessage
	err := db.Where("status = ?", models.ScheduledPending).
		Order("scheduled_for ASC").First(&next).Error
	if err == nil {
		t := next.ScheduledFor.UTC().Format(time.RFC3339)
		s.NextScheduledSend = &t
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return &s, nil
}
