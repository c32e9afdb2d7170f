package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/courier"
	"github.com/parth-ai/parth/internal/reasoning"
	"github.com/parth-ai/parth/internal/store"
)

// Result statuses. Failed is reserved for unexpected persistence faults;
// everything the engine can recover from locally resolves to completed.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Execution describes the side effects of one executed decision.
type Execution struct {
	Status             string `json:"status"` // completed or failed
	Action             string `json:"action,omitempty"`
	MessageID          uint   `json:"message_id,omitempty"`
	ScheduledMessageID uint   `json:"scheduled_message_id,omitempty"`
	ScheduledFor       string `json:"scheduled_for,omitempty"`
	Reasoning          string `json:"reasoning,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

// Result is the envelope for one full evaluation run.
type Result struct {
	AccountID uint      `json:"account_id"`
	Status    string    `json:"status"`
	Decision  Decision  `json:"decision"`
	Execution Execution `json:"execution"`
	Timestamp string    `json:"timestamp"`
}

// Runner drives the proactive evaluation state machine for one account
// at a time.
type Runner struct {
	DB      *gorm.DB
	Engine  reasoning.Engine
	Courier courier.Courier
	Now     func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Run evaluates whether to reach out to the account and executes the
// decision. Ambiguity of any kind resolves to skip: this system must
// never guess its way into sending an unintended message.
func (r *Runner) Run(ctx context.Context, accountID uint) (*Result, error) {
	now := r.now()

	snap, err := BuildContext(r.DB, accountID, now)
	if err != nil {
		decision := skipDecision(fmt.Sprintf("context error: %v", err))
		// A missing account has no row to attach an evaluation log to.
		if !errors.Is(err, ErrAccountNotFound) {
			r.logEvaluation(accountID, decision, "")
		}
		return r.finish(accountID, decision, now), nil
	}

	if snap.ActiveGoalsCount == 0 {
		decision := skipDecision("no active goals")
		r.logEvaluation(accountID, decision, "")
		return r.finish(accountID, decision, now), nil
	}

	decision, raw := r.evaluate(ctx, snap)
	r.logEvaluation(accountID, decision, raw)

	exec, persistErr := r.execute(ctx, accountID, decision, now)
	result := &Result{
		AccountID: accountID,
		Status:    StatusCompleted,
		Decision:  decision,
		Execution: exec,
		Timestamp: iso(now),
	}
	if persistErr != nil {
		result.Status = StatusFailed
		return result, persistErr
	}
	log.Printf("coach: account %d: %s - %s", accountID, decision.Action, decision.Reasoning)
	return result, nil
}

// evaluate asks the engine for a decision. Transport failures and
// contract violations both fall back to skip; raw output is returned for
// logging only when validation failed.
func (r *Runner) evaluate(ctx context.Context, snap *Snapshot) (Decision, string) {
	blob, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return skipDecision(fmt.Sprintf("context error: %v", err)), ""
	}
	prompt := fmt.Sprintf("## CONTEXT\n\n```json\n%s\n```\n\nProvide your decision as valid JSON:", blob)

	raw, err := r.Engine.Evaluate(ctx, reasoning.EvaluationPrompt, prompt)
	if err != nil {
		return skipDecision(fmt.Sprintf("evaluation error: %v", err)), ""
	}

	decision, err := ParseDecision(raw)
	if err != nil {
		log.Printf("coach: account %d: invalid decision: %v", snap.AccountID, err)
		return skipDecision("invalid decision structure"), raw
	}
	return decision, ""
}

func (r *Runner) logEvaluation(accountID uint, d Decision, raw string) {
	if err := store.LogEvaluation(r.DB, accountID, d.Action, d.Reasoning, raw); err != nil {
		log.Printf("coach: account %d: log evaluation: %v", accountID, err)
	}
}

// finish wraps a pre-execution skip into a completed result.
func (r *Runner) finish(accountID uint, decision Decision, now time.Time) *Result {
	return &Result{
		AccountID: accountID,
		Status:    StatusCompleted,
		Decision:  decision,
		Execution: Execution{Status: StatusCompleted, Action: "skipped", Reasoning: decision.Reasoning},
		Timestamp: iso(now),
	}
}
