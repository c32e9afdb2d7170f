package coach

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/parth-ai/parth/internal/models"
	"github.com/parth-ai/parth/internal/store"
)

// execute applies the decision's side effects. The returned error is
// non-nil only for persistence faults; recoverable problems (dispatch
// failures, malformed schedule fields) come back as a failed Execution.
func (r *Runner) execute(ctx context.Context, accountID uint, d Decision, now time.Time) (Execution, error) {
	switch d.Action {
	case ActionSendNow:
		return r.executeSendNow(ctx, accountID, d)
	case ActionSchedule:
		return r.executeSchedule(accountID, d, now)
	case ActionSkip:
		return Execution{Status: StatusCompleted, Action: "skipped", Reasoning: d.Reasoning}, nil
	default:
		return Execution{Status: StatusFailed, Reason: fmt.Sprintf("unknown action: %s", d.Action)}, nil
	}
}

// executeSendNow delivers first and records second. A failed dispatch
// writes nothing: a logged-but-undelivered message is worse than a
// missing log.
func (r *Runner) executeSendNow(ctx context.Context, accountID uint, d Decision) (Execution, error) {
	if d.Message == nil || *d.Message == "" {
		return Execution{Status: StatusFailed, Reason: "send_now without message"}, nil
	}

	acct, err := store.GetAccount(r.DB, accountID)
	if err != nil {
		return Execution{Status: StatusFailed, Reason: "account not found"}, nil
	}

	handle := strconv.FormatInt(acct.TelegramID, 10)
	if err := r.Courier.Send(ctx, handle, *d.Message); err != nil {
		return Execution{Status: StatusFailed, Reason: err.Error()}, nil
	}

	msg, err := store.CreateMessage(r.DB, accountID, models.RoleAssistant, *d.Message, store.MessageOpts{GoalID: d.GoalID})
	if err != nil {
		return Execution{Status: StatusFailed, Reason: err.Error()}, err
	}
	return Execution{Status: StatusCompleted, Action: "sent", MessageID: msg.ID}, nil
}

// executeSchedule persists a pending row for the sweep to deliver.
// scheduled_for never lands in the past: an already-due send_at is
// clamped to now so the next sweep picks it up immediately.
func (r *Runner) executeSchedule(accountID uint, d Decision, now time.Time) (Execution, error) {
	if d.Message == nil || *d.Message == "" {
		return Execution{Status: StatusFailed, Reason: "schedule without message"}, nil
	}
	if d.SendAt == nil {
		return Execution{Status: StatusFailed, Reason: "schedule without send_at"}, nil
	}
	at, err := parseSendAt(*d.SendAt)
	if err != nil {
		return Execution{Status: StatusFailed, Reason: err.Error()}, nil
	}
	if at.Before(now) {
		at = now
	}

	sm, err := store.CreateScheduledMessage(r.DB, accountID, d.GoalID, at, *d.Message)
	if err != nil {
		return Execution{Status: StatusFailed, Reason: err.Error()}, err
	}
	return Execution{
		Status:             StatusCompleted,
		Action:             "scheduled",
		ScheduledMessageID: sm.ID,
		ScheduledFor:       iso(at),
	}, nil
}
