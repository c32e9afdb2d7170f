// Package discord implements the courier for Discord.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/parth-ai/parth/internal/courier"
)

// discordMaxLen is the Discord message content limit, smaller than the
// shared courier limit.
const discordMaxLen = 2000

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Courier sends messages to Discord channels.
type Courier struct {
	sess session
}

// Opts holds parameters for creating a Discord Courier.
type Opts struct {
	BotToken string
	// For testing: inject a mock session instead of a real one.
	Session session
}

// New creates a Discord Courier.
func New(opts Opts) (*Courier, error) {
	if opts.Session != nil {
		return &Courier{sess: opts.Session}, nil
	}
	if opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	sess, err := discordgo.New("Bot " + opts.BotToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &Courier{sess: sess}, nil
}

// Send posts text to the channel identified by handle. Discord renders the
// markdown subset natively, so only truncation applies.
func (c *Courier) Send(ctx context.Context, handle string, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("discord: send to %s: %w", handle, err)
	}
	formatted := courier.Truncate(text, discordMaxLen, discordMaxLen-6)
	if _, err := c.sess.ChannelMessageSend(handle, formatted); err != nil {
		return fmt.Errorf("discord: send to %s: %w", handle, err)
	}
	return nil
}
