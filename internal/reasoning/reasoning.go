// Package reasoning wraps the language model behind a small engine
// interface so the coach and chat layers stay testable.
package reasoning

import "context"

// Event is one observable step of a chat completion.
type Event struct {
	Type    string // "text", "tool_call", "tool_output"
	Content string
}

// Turn is one prior exchange in a conversation, oldest first.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// ChatRequest carries everything a conversational completion needs.
type ChatRequest struct {
	System  string
	History []Turn
	Message string
}

// Param describes one tool parameter. All tools take flat scalar
// parameters; nested objects travel as JSON strings.
type Param struct {
	Name        string
	Type        string // "string", "integer", "number", "boolean"
	Description string
	Required    bool
}

// ToolDef declares one callable tool to the model.
type ToolDef struct {
	Name        string
	Description string
	Params      []Param
}

// ToolInvoker exposes tools to the engine. Invoke returns the tool output
// as a string; errors are surfaced to the model as output, not returned,
// so the model can recover.
type ToolInvoker interface {
	Defs() []ToolDef
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}

// Engine is a reasoning backend.
//
// Evaluate runs a single-shot completion constrained to JSON output.
// Chat runs a conversational completion with tool calling; emit, when
// non-nil, receives events as the completion progresses, and the final
// reply text is returned.
type Engine interface {
	Evaluate(ctx context.Context, system, prompt string) (string, error)
	Chat(ctx context.Context, req ChatRequest, tools ToolInvoker, emit func(Event)) (string, error)
}
