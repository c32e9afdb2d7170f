// Package telegram implements the courier for the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/parth-ai/parth/internal/courier"
)

const defaultBaseURL = "https://api.telegram.org"

// Courier sends messages through the Telegram Bot API sendMessage endpoint.
type Courier struct {
	token   string
	baseURL string
	client  *http.Client
}

// Opts holds parameters for creating a Telegram Courier.
type Opts struct {
	Token   string
	BaseURL string        // override for tests; defaults to api.telegram.org
	Timeout time.Duration // defaults to 10s
}

// New creates a Telegram Courier.
func New(opts Opts) (*Courier, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Courier{
		token:   opts.Token,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// sendMessageRequest is the Bot API sendMessage payload.
type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers text to the chat identified by handle (a Telegram chat ID).
// Markdown is converted to Telegram HTML and the payload truncated to the
// platform limit before sending.
func (c *Courier) Send(ctx context.Context, handle string, text string) error {
	chatID, err := strconv.ParseInt(handle, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: handle %q is not a chat id: %w", handle, err)
	}

	formatted := courier.Truncate(courier.MarkdownToHTML(text), courier.MaxMessageLen, courier.TruncateAt)

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      formatted,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send to chat %d: %w", chatID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("telegram: read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("telegram: response status %d: %w", resp.StatusCode, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram: send to chat %d failed: %s", chatID, parsed.Description)
	}
	return nil
}
