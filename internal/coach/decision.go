package coach

import (
	"encoding/json"
	"fmt"
	"time"
)

// Decision actions.
const (
	ActionSendNow  = "send_now"
	ActionSchedule = "schedule"
	ActionSkip     = "skip"
)

// Decision is the reasoning engine's evaluation output. It is untrusted
// structured data: ParseDecision enforces the wire contract before any
// side effect happens, and the struct is never persisted verbatim.
type Decision struct {
	Action    string  `json:"action"`
	Message   *string `json:"message"`
	GoalID    *uint   `json:"goal_id"`
	SendAt    *string `json:"send_at"`
	Reasoning string  `json:"reasoning"`
}

func skipDecision(reasoning string) Decision {
	return Decision{Action: ActionSkip, Reasoning: reasoning}
}

var decisionKeys = []string{"action", "message", "goal_id", "send_at", "reasoning"}

// ParseDecision validates raw engine output against the decision
// contract: a JSON object with exactly the five expected keys and a
// recognized action. Any deviation is an error; the caller falls back to
// skip rather than guessing.
func ParseDecision(raw string) (Decision, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Decision{}, fmt.Errorf("coach: decision is not a JSON object: %w", err)
	}
	if len(fields) != len(decisionKeys) {
		return Decision{}, fmt.Errorf("coach: decision has %d keys, want %d", len(fields), len(decisionKeys))
	}
	for _, key := range decisionKeys {
		if _, ok := fields[key]; !ok {
			return Decision{}, fmt.Errorf("coach: decision missing key %q", key)
		}
	}

	var d Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Decision{}, fmt.Errorf("coach: decision field types: %w", err)
	}
	switch d.Action {
	case ActionSendNow, ActionSchedule, ActionSkip:
	default:
		return Decision{}, fmt.Errorf("coach: unknown action %q", d.Action)
	}
	return d, nil
}

// parseSendAt accepts RFC3339 or a bare ISO-8601 timestamp, which is
// interpreted as UTC.
func parseSendAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("coach: send_at %q is not a timestamp", s)
}
