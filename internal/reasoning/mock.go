package reasoning

import (
	"context"
	"sync"
)

// Scripted is an Engine fake for tests. It replays queued responses and
// records every prompt it receives.
type Scripted struct {
	mu        sync.Mutex
	responses []string
	idx       int

	// Err, when set, is returned by every call.
	Err error

	EvaluateCalls []string // prompts passed to Evaluate
	ChatCalls     []ChatRequest
}

// NewScripted creates a Scripted engine that returns the given responses
// in order, repeating the last one when exhausted.
func NewScripted(responses ...string) *Scripted {
	return &Scripted{responses: responses}
}

func (s *Scripted) next() string {
	if len(s.responses) == 0 {
		return ""
	}
	r := s.responses[s.idx]
	if s.idx < len(s.responses)-1 {
		s.idx++
	}
	return r
}

func (s *Scripted) Evaluate(ctx context.Context, system, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.EvaluateCalls = append(s.EvaluateCalls, prompt)
	return s.next(), nil
}

func (s *Scripted) Chat(ctx context.Context, req ChatRequest, tools ToolInvoker, emit func(Event)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.ChatCalls = append(s.ChatCalls, req)
	text := s.next()
	if emit != nil && text != "" {
		emit(Event{Type: "text", Content: text})
	}
	return text, nil
}
