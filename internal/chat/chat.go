// Package chat is the Telegram front-end: a long-polling loop that turns
// incoming text into reasoning-engine conversations. Pure I/O; all
// decision logic lives elsewhere.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/courier"
	"github.com/parth-ai/parth/internal/models"
	"github.com/parth-ai/parth/internal/reasoning"
	"github.com/parth-ai/parth/internal/store"
	"github.com/parth-ai/parth/internal/tools"
)

const (
	defaultBaseURL     = "https://api.telegram.org"
	defaultPollTimeout = 30 // seconds, Telegram long-poll window

	welcomeText = "**Parth**\n\nYour personal guide for goals and growth. " +
		"Ask me anything about creating goals, tracking progress, or getting guidance.\n\n" +
		"Try: *Create a goal to run 5K* or *What are my active goals?*"

	apologyText = "Sorry, something went wrong on my side. Please try again."
)

// Bot runs the Telegram long-polling loop.
type Bot struct {
	db      *gorm.DB
	engine  reasoning.Engine
	courier courier.Courier

	token       string
	baseURL     string
	pollTimeout int
	client      *http.Client
}

// Opts holds parameters for creating a Bot.
type Opts struct {
	DB             *gorm.DB
	Engine         reasoning.Engine
	Courier        courier.Courier
	Token          string
	BaseURL        string // override for tests
	PollTimeoutSec int    // defaults to 30
}

// New creates a Bot.
func New(opts Opts) (*Bot, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("chat: bot token is required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pollTimeout := opts.PollTimeoutSec
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	return &Bot{
		db:          opts.DB,
		engine:      opts.Engine,
		courier:     opts.Courier,
		token:       opts.Token,
		baseURL:     baseURL,
		pollTimeout: pollTimeout,
		// Client timeout must outlast the long-poll window.
		client: &http.Client{Timeout: time.Duration(pollTimeout+10) * time.Second},
	}, nil
}

// update mirrors the Bot API getUpdates result entries we care about.
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64  `json:"message_id"`
		Text      string `json:"text"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description"`
	Result      []update `json:"result"`
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("chat: polling for updates")
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		updates, err := b.poll(ctx, offset)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("chat: poll: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) poll(ctx context.Context, offset int64) ([]update, error) {
	q := url.Values{}
	q.Set("timeout", strconv.Itoa(b.pollTimeout))
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", b.baseURL, b.token, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: build poll request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat: get updates: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("chat: read updates: %w", err)
	}
	var parsed updatesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("chat: parse updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("chat: get updates failed: %s", parsed.Description)
	}
	return parsed.Result, nil
}

func (b *Bot) handleUpdate(ctx context.Context, upd update) {
	if upd.Message == nil || upd.Message.Text == "" {
		return
	}
	chatID := upd.Message.Chat.ID
	handle := strconv.FormatInt(chatID, 10)

	if upd.Message.Text == "/start" {
		if err := b.courier.Send(ctx, handle, welcomeText); err != nil {
			log.Printf("chat: welcome to %d: %v", chatID, err)
		}
		return
	}

	b.handleText(ctx, chatID, upd.Message.MessageID, upd.Message.Text)
}

// handleText runs one conversational turn: persist the user message,
// replay recent history to the engine with tools attached, deliver the
// reply, persist it. Users see messages or an apology, never errors.
func (b *Bot) handleText(ctx context.Context, chatID, messageID int64, text string) {
	handle := strconv.FormatInt(chatID, 10)

	acct, err := store.GetOrCreateAccount(b.db, chatID)
	if err != nil {
		log.Printf("chat: account for %d: %v", chatID, err)
		b.apologize(ctx, handle)
		return
	}

	// History first, so the new message is not replayed twice.
	history, err := b.history(acct.ID)
	if err != nil {
		log.Printf("chat: history for account %d: %v", acct.ID, err)
		b.apologize(ctx, handle)
		return
	}

	if _, err := store.CreateMessage(b.db, acct.ID, models.RoleUser, text, store.MessageOpts{TelegramMessageID: &messageID}); err != nil {
		log.Printf("chat: persist user message: %v", err)
		b.apologize(ctx, handle)
		return
	}

	toolset := &tools.Toolset{
		DB:        b.db,
		AccountID: acct.ID,
		Handle:    handle,
		Courier:   b.courier,
	}
	req := reasoning.ChatRequest{
		System:  reasoning.CoachPrompt,
		History: history,
		Message: text,
	}
	reply, err := b.engine.Chat(ctx, req, toolset, func(e reasoning.Event) {
		if e.Type == "tool_call" {
			log.Printf("chat: account %d: tool %s", acct.ID, e.Content)
		}
	})
	if err != nil {
		log.Printf("chat: engine for account %d: %v", acct.ID, err)
		b.apologize(ctx, handle)
		return
	}
	if reply == "" {
		// The engine said everything through send_message tool calls.
		return
	}

	if err := b.courier.Send(ctx, handle, reply); err != nil {
		log.Printf("chat: deliver reply to %d: %v", chatID, err)
		return
	}
	if _, err := store.CreateMessage(b.db, acct.ID, models.RoleAssistant, reply, store.MessageOpts{}); err != nil {
		log.Printf("chat: persist reply: %v", err)
	}
}

func (b *Bot) history(accountID uint) ([]reasoning.Turn, error) {
	msgs, err := store.RecentMessages(b.db, accountID, 20)
	if err != nil {
		return nil, err
	}
	turns := make([]reasoning.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, reasoning.Turn{Role: m.Role, Content: m.Content})
	}
	return turns, nil
}

func (b *Bot) apologize(ctx context.Context, handle string) {
	if err := b.courier.Send(ctx, handle, apologyText); err != nil {
		log.Printf("chat: apology to %s: %v", handle, err)
	}
}
