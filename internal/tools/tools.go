// Package tools exposes the store to the reasoning engine as callable
// tools, scoped to a single account.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/courier"
	"github.com/parth-ai/parth/internal/models"
	"github.com/parth-ai/parth/internal/reasoning"
	"github.com/parth-ai/parth/internal/store"
)

// Toolset implements reasoning.ToolInvoker for one account. Every goal
// operation is ownership-checked so the model can never touch another
// account's data.
type Toolset struct {
	DB        *gorm.DB
	AccountID uint
	Handle    string          // platform handle for send_message
	Courier   courier.Courier // delivery for send_message
	Now       func() time.Time
}

func (t *Toolset) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now().UTC()
}

// Defs declares the tool surface offered to the model.
func (t *Toolset) Defs() []reasoning.ToolDef {
	return []reasoning.ToolDef{
		{
			Name:        "update_user_preferences",
			Description: "Update user preferences with a JSON object string. Merges with existing data.",
			Params: []reasoning.Param{
				{Name: "data_json", Type: "string", Description: "JSON object of preference keys to merge", Required: true},
			},
		},
		{
			Name:        "list_goals",
			Description: "List all of the user's goals with id, title, status and timestamps.",
		},
		{
			Name:        "get_goal",
			Description: "Get one goal's details.",
			Params: []reasoning.Param{
				{Name: "goal_id", Type: "integer", Description: "goal id", Required: true},
			},
		},
		{
			Name:        "create_goal",
			Description: "Create a new goal. Returns the new goal id.",
			Params: []reasoning.Param{
				{Name: "title", Type: "string", Description: "goal title", Required: true},
			},
		},
		{
			Name:        "update_goal_status",
			Description: "Update a goal's status: active, paused, completed or abandoned.",
			Params: []reasoning.Param{
				{Name: "goal_id", Type: "integer", Required: true},
				{Name: "status", Type: "string", Description: "new status", Required: true},
			},
		},
		{
			Name:        "get_goal_data",
			Description: "Get the agent data blob for a goal as a JSON object string.",
			Params: []reasoning.Param{
				{Name: "goal_id", Type: "integer", Required: true},
			},
		},
		{
			Name:        "update_goal_data",
			Description: "Merge a JSON object string into the goal's agent data. Existing keys not in the patch survive.",
			Params: []reasoning.Param{
				{Name: "goal_id", Type: "integer", Required: true},
				{Name: "data_json", Type: "string", Description: "JSON object to merge", Required: true},
			},
		},
		{
			Name:        "append_goal_event",
			Description: "Append an event object to the goal's event log. A timestamp is added automatically.",
			Params: []reasoning.Param{
				{Name: "goal_id", Type: "integer", Required: true},
				{Name: "event_json", Type: "string", Description: "JSON object describing the event", Required: true},
			},
		},
		{
			Name:        "send_message",
			Description: "Send a message to the user immediately.",
			Params: []reasoning.Param{
				{Name: "content", Type: "string", Description: "message text", Required: true},
				{Name: "goal_id", Type: "integer", Description: "related goal id, if any"},
			},
		},
		{
			Name:        "get_recent_messages",
			Description: "Get recent conversation messages in chronological order.",
			Params: []reasoning.Param{
				{Name: "limit", Type: "integer", Description: "max messages, default 20"},
			},
		},
	}
}

// Invoke dispatches one tool call.
func (t *Toolset) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "update_user_preferences":
		return t.updateUserPreferences(args)
	case "list_goals":
		return t.listGoals()
	case "get_goal":
		return t.getGoal(args)
	case "create_goal":
		return t.createGoal(args)
	case "update_goal_status":
		return t.updateGoalStatus(args)
	case "get_goal_data":
		return t.getGoalData(args)
	case "update_goal_data":
		return t.updateGoalData(args)
	case "append_goal_event":
		return t.appendGoalEvent(args)
	case "send_message":
		return t.sendMessage(ctx, args)
	case "get_recent_messages":
		return t.getRecentMessages(args)
	default:
		return "", fmt.Errorf("tools: unknown tool %q", name)
	}
}

// goalView is the wire shape returned for goals.
type goalView struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func viewOf(g models.Goal) goalView {
	return goalView{
		ID:        g.ID,
		Title:     g.Title,
		Status:    g.Status,
		CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: g.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (t *Toolset) updateUserPreferences(args map[string]any) (string, error) {
	patch, err := objectArg(args, "data_json")
	if err != nil {
		return "", err
	}
	if err := store.MergePreferences(t.DB, t.AccountID, patch); err != nil {
		return "", err
	}
	return okResult(), nil
}

func (t *Toolset) listGoals() (string, error) {
	goals, err := store.ListGoals(t.DB, t.AccountID)
	if err != nil {
		return "", err
	}
	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, viewOf(g))
	}
	return marshal(views)
}

func (t *Toolset) getGoal(args map[string]any) (string, error) {
	goalID, err := uintArg(args, "goal_id")
	if err != nil {
		return "", err
	}
	goal, err := store.GetGoal(t.DB, t.AccountID, goalID)
	if err != nil {
		return "", err
	}
	return marshal(viewOf(*goal))
}

func (t *Toolset) createGoal(args map[string]any) (string, error) {
	title, err := stringArg(args, "title")
	if err != nil {
		return "", err
	}
	goal, err := store.CreateGoal(t.DB, t.AccountID, title)
	if err != nil {
		return "", err
	}
	return marshal(map[string]any{"goal_id": goal.ID})
}

func (t *Toolset) updateGoalStatus(args map[string]any) (string, error) {
	goalID, err := uintArg(args, "goal_id")
	if err != nil {
		return "", err
	}
	status, err := stringArg(args, "status")
	if err != nil {
		return "", err
	}
	if err := store.UpdateGoalStatus(t.DB, t.AccountID, goalID, status); err != nil {
		return "", err
	}
	return okResult(), nil
}

func (t *Toolset) getGoalData(args map[string]any) (string, error) {
	goalID, err := t.ownedGoal(args)
	if err != nil {
		return "", err
	}
	blob, err := store.GetGoalData(t.DB, goalID)
	if err != nil {
		return "", err
	}
	if blob == "" {
		blob = "{}"
	}
	return blob, nil
}

func (t *Toolset) updateGoalData(args map[string]any) (string, error) {
	goalID, err := t.ownedGoal(args)
	if err != nil {
		return "", err
	}
	patch, err := objectArg(args, "data_json")
	if err != nil {
		return "", err
	}
	if err := store.MergeGoalData(t.DB, goalID, patch); err != nil {
		return "", err
	}
	return okResult(), nil
}

func (t *Toolset) appendGoalEvent(args map[string]any) (string, error) {
	goalID, err := t.ownedGoal(args)
	if err != nil {
		return "", err
	}
	event, err := objectArg(args, "event_json")
	if err != nil {
		return "", err
	}
	if _, ok := event["timestamp"]; !ok {
		event["timestamp"] = t.now().Format(time.RFC3339)
	}
	if err := store.AppendGoalEvent(t.DB, goalID, event); err != nil {
		return "", err
	}
	return okResult(), nil
}

func (t *Toolset) sendMessage(ctx context.Context, args map[string]any) (string, error) {
	content, err := stringArg(args, "content")
	if err != nil {
		return "", err
	}
	var goalID *uint
	if _, present := args["goal_id"]; present {
		id, err := t.ownedGoal(args)
		if err != nil {
			return "", err
		}
		goalID = &id
	}
	if err := t.Courier.Send(ctx, t.Handle, content); err != nil {
		return "", err
	}
	if _, err := store.CreateMessage(t.DB, t.AccountID, models.RoleAssistant, content, store.MessageOpts{GoalID: goalID}); err != nil {
		return "", err
	}
	return okResult(), nil
}

func (t *Toolset) getRecentMessages(args map[string]any) (string, error) {
	limit := 0
	if _, present := args["limit"]; present {
		n, err := uintArg(args, "limit")
		if err != nil {
			return "", err
		}
		limit = int(n)
	}
	msgs, err := store.RecentMessages(t.DB, t.AccountID, limit)
	if err != nil {
		return "", err
	}
	type msgView struct {
		Role      string `json:"role"`
		Content   string `json:"content"`
		CreatedAt string `json:"created_at"`
	}
	views := make([]msgView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, msgView{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return marshal(views)
}

// ownedGoal resolves the goal_id argument and verifies the goal belongs
// to this toolset's account.
func (t *Toolset) ownedGoal(args map[string]any) (uint, error) {
	goalID, err := uintArg(args, "goal_id")
	if err != nil {
		return 0, err
	}
	if _, err := store.GetGoal(t.DB, t.AccountID, goalID); err != nil {
		return 0, err
	}
	return goalID, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("tools: argument %q must be a non-empty string", key)
	}
	return v, nil
}

// uintArg accepts float64 (JSON numbers), int, and numeric strings, since
// models are inconsistent about how they encode ids.
func uintArg(args map[string]any, key string) (uint, error) {
	switch v := args[key].(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("tools: argument %q must be non-negative", key)
		}
		return uint(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("tools: argument %q must be non-negative", key)
		}
		return uint(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil || n < 0 {
			return 0, fmt.Errorf("tools: argument %q is not a valid id", key)
		}
		return uint(n), nil
	case string:
		var n uint
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, fmt.Errorf("tools: argument %q is not a valid id", key)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("tools: argument %q is required", key)
	}
}

// objectArg parses a JSON-object-string argument.
func objectArg(args map[string]any, key string) (map[string]any, error) {
	raw, err := stringArg(args, key)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("tools: argument %q is not a JSON object: %w", key, err)
	}
	return obj, nil
}

func marshal(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("tools: marshal result: %w", err)
	}
	return string(out), nil
}

func okResult() string {
	return `{"ok": true}`
}
