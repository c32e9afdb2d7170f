package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"github.com/parth-ai/parth/internal/config"
	"github.com/parth-ai/parth/internal/courier"
	"github.com/parth-ai/parth/internal/courier/discord"
	"github.com/parth-ai/parth/internal/courier/slack"
	"github.com/parth-ai/parth/internal/courier/telegram"
	"github.com/parth-ai/parth/internal/db"
	"github.com/parth-ai/parth/internal/reasoning"
)

// connectFromConfig loads the config file and opens the database.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// buildCourier constructs the outbound dispatcher for the configured
// channel.
func buildCourier(cfg *config.Config) (courier.Courier, error) {
	switch cfg.Channel {
	case "telegram":
		return telegram.New(telegram.Opts{Token: cfg.Telegram.Token})
	case "slack":
		return slack.New(slack.Opts{BotToken: cfg.Slack.BotToken})
	case "discord":
		return discord.New(discord.Opts{BotToken: cfg.Discord.Token})
	default:
		return nil, fmt.Errorf("unknown channel %q", cfg.Channel)
	}
}

// buildEngine constructs the Gemini reasoning engine.
func buildEngine(ctx context.Context, cfg *config.Config) (reasoning.Engine, error) {
	return reasoning.NewGemini(ctx, reasoning.GeminiOpts{
		APIKey: cfg.Reasoning.APIKey,
		Model:  cfg.Reasoning.Model,
	})
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
