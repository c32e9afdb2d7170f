// Package coach implements the proactive outreach decision engine: it
// snapshots an account's state, asks the reasoning engine whether to
// reach out, validates the answer, and executes it exactly once.
package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/models"
	"github.com/parth-ai/parth/internal/store"
)

// ErrAccountNotFound reports a context build against a missing account.
var ErrAccountNotFound = errors.New("coach: account not found")

// GoalContext is one active goal inside a Snapshot.
type GoalContext struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MessageContext is one recent message inside a Snapshot.
type MessageContext struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	GoalID    *uint  `json:"goal_id"`
}

// ScheduledContext is one pending scheduled message inside a Snapshot.
type ScheduledContext struct {
	GoalID         *uint  `json:"goal_id"`
	ScheduledFor   string `json:"scheduled_for"`
	MessageContent string `json:"message_content"`
}

// Snapshot is the analytical context handed to the reasoning engine for
// one evaluation. It is read-only derived state; building it mutates
// nothing.
type Snapshot struct {
	AccountID                      uint               `json:"account_id"`
	TelegramID                     int64              `json:"telegram_id"`
	Timezone                       string             `json:"timezone"`
	IsActive                       bool               `json:"is_active"`
	QuietHours                     string             `json:"quiet_hours,omitempty"`
	CurrentDatetime                string             `json:"current_datetime"`
	ActiveGoals                    []GoalContext      `json:"active_goals"`
	ActiveGoalsCount               int                `json:"active_goals_count"`
	RecentMessages                 []MessageContext   `json:"recent_messages"`
	LastMessageAt                  *string            `json:"last_message_at"`
	LastAssistantMessageAt         *string            `json:"last_assistant_message_at"`
	HoursSinceLastMessage          *float64           `json:"hours_since_last_message"`
	HoursSinceLastAssistantMessage *float64           `json:"hours_since_last_assistant_message"`
	UserPreferences                map[string]any     `json:"user_preferences"`
	PendingScheduledMessages       []ScheduledContext `json:"pending_scheduled_messages"`
}

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// BuildContext assembles the evaluation snapshot for one account as of
// now. Returns ErrAccountNotFound if the account does not exist.
func BuildContext(db *gorm.DB, accountID uint, now time.Time) (*Snapshot, error) {
	acct, err := store.GetAccount(db, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("coach: build context: %w", err)
	}

	goals, err := store.ActiveGoals(db, accountID)
	if err != nil {
		return nil, fmt.Errorf("coach: build context: %w", err)
	}
	goalCtxs := make([]GoalContext, 0, len(goals))
	for _, g := range goals {
		gc := GoalContext{
			ID:        g.ID,
			Title:     g.Title,
			CreatedAt: iso(g.CreatedAt),
			UpdatedAt: iso(g.UpdatedAt),
		}
		if g.Data != nil && json.Valid([]byte(g.Data.AgentData)) {
			gc.Data = json.RawMessage(g.Data.AgentData)
		}
		goalCtxs = append(goalCtxs, gc)
	}

	msgs, err := store.RecentMessages(db, accountID, 20)
	if err != nil {
		return nil, fmt.Errorf("coach: build context: %w", err)
	}
	msgCtxs := make([]MessageContext, 0, len(msgs))
	var lastMsg, lastAssistant *time.Time
	for i := range msgs {
		m := msgs[i]
		msgCtxs = append(msgCtxs, MessageContext{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: iso(m.CreatedAt),
			GoalID:    m.GoalID,
		})
		t := m.CreatedAt
		if lastMsg == nil || t.After(*lastMsg) {
			lastMsg = &t
		}
		if m.Role == models.RoleAssistant && (lastAssistant == nil || t.After(*lastAssistant)) {
			lastAssistant = &t
		}
	}

	prefs, err := store.GetPreferences(db, accountID)
	if err != nil {
		return nil, fmt.Errorf("coach: build context: %w", err)
	}

	pending, err := store.PendingScheduledMessages(db, accountID)
	if err != nil {
		return nil, fmt.Errorf("coach: build context: %w", err)
	}
	pendingCtxs := make([]ScheduledContext, 0, len(pending))
	for _, sm := range pending {
		pendingCtxs = append(pendingCtxs, ScheduledContext{
			GoalID:         sm.GoalID,
			ScheduledFor:   iso(sm.ScheduledFor),
			MessageContent: sm.MessageContent,
		})
	}

	snap := &Snapshot{
		AccountID:                acct.ID,
		TelegramID:               acct.TelegramID,
		Timezone:                 acct.Timezone,
		IsActive:                 acct.IsActive,
		QuietHours:               acct.QuietHours,
		CurrentDatetime:          iso(now),
		ActiveGoals:              goalCtxs,
		ActiveGoalsCount:         len(goalCtxs),
		RecentMessages:           msgCtxs,
		UserPreferences:          prefs,
		PendingScheduledMessages: pendingCtxs,
	}
	if lastMsg != nil {
		s := iso(*lastMsg)
		h := now.Sub(*lastMsg).Hours()
		snap.LastMessageAt = &s
		snap.HoursSinceLastMessage = &h
	}
	if lastAssistant != nil {
		s := iso(*lastAssistant)
		h := now.Sub(*lastAssistant).Hours()
		snap.LastAssistantMessageAt = &s
		snap.HoursSinceLastAssistantMessage = &h
	}
	return snap, nil
}
