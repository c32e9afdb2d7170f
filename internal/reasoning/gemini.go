package reasoning

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// maxToolRounds bounds the tool-calling loop so a misbehaving model
// cannot spin forever.
const maxToolRounds = 8

// Gemini is the production Engine backed by the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiOpts holds parameters for creating a Gemini engine.
type GeminiOpts struct {
	APIKey string
	Model  string // defaults to gemini-2.5-flash
}

// NewGemini creates a Gemini engine.
func NewGemini(ctx context.Context, opts GeminiOpts) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("reasoning: gemini api key is required")
	}
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning: create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Evaluate runs a single-shot JSON-mode completion. The response is the
// raw model text; callers parse and validate it.
func (g *Gemini) Evaluate(ctx context.Context, system, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.7),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("reasoning: evaluate: %w", err)
	}
	return resp.Text(), nil
}

// Chat runs a conversational completion, resolving tool calls in a loop
// until the model produces plain text or the round limit is hit.
func (g *Gemini) Chat(ctx context.Context, req ChatRequest, tools ToolInvoker, emit func(Event)) (string, error) {
	if emit == nil {
		emit = func(Event) {}
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
	}
	if tools != nil {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: declarations(tools.Defs())}}
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return "", fmt.Errorf("reasoning: chat: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			text := resp.Text()
			if text != "" {
				emit(Event{Type: "text", Content: text})
			}
			return text, nil
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			emit(Event{Type: "tool_call", Content: call.Name})
			output, err := tools.Invoke(ctx, call.Name, call.Args)
			if err != nil {
				// Feed errors back so the model can adjust its approach.
				log.Printf("reasoning: tool %s failed: %v", call.Name, err)
				output = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			emit(Event{Type: "tool_output", Content: output})
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{
				"output": output,
			}))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", fmt.Errorf("reasoning: chat: tool loop exceeded %d rounds", maxToolRounds)
}

// declarations converts tool definitions to the Gemini schema form.
func declarations(defs []ToolDef) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		props := make(map[string]*genai.Schema, len(def.Params))
		var required []string
		for _, p := range def.Params {
			props[p.Name] = &genai.Schema{
				Type:        schemaType(p.Type),
				Description: p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			},
		})
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
