// Package slack implements the courier for Slack.
package slack

import (
	"context"
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/parth-ai/parth/internal/courier"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Courier sends messages to Slack channels.
type Courier struct {
	client slackClient
}

// Opts holds parameters for creating a Slack Courier.
type Opts struct {
	BotToken string // xoxb-... Slack bot token
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Courier.
func New(opts Opts) (*Courier, error) {
	if opts.Client != nil {
		return &Courier{client: opts.Client}, nil
	}
	if opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	return &Courier{client: slackapi.New(opts.BotToken)}, nil
}

// Send posts text to the channel identified by handle, converted to Slack
// mrkdwn and truncated to the outbound payload limit.
func (c *Courier) Send(ctx context.Context, handle string, text string) error {
	formatted := courier.Truncate(toMrkdwn(text), courier.MaxMessageLen, courier.TruncateAt)
	_, _, err := c.client.PostMessageContext(ctx, handle,
		slackapi.MsgOptionText(formatted, false),
		slackapi.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("slack: post to %s: %w", handle, err)
	}
	return nil
}

// toMrkdwn maps the reasoning engine's markdown to Slack mrkdwn: **bold**
// becomes *bold*; single-asterisk italic and backtick code pass through.
func toMrkdwn(text string) string {
	return strings.ReplaceAll(text, "**", "*")
}
