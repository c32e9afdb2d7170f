// Package config provides YAML-based configuration loading for Parth.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Parth configuration, loaded from config.yaml.
// Secrets (bot tokens, API keys) come from the environment, not the file.
type Config struct {
	Channel   string          `yaml:"channel"` // telegram (default), slack, discord
	Database  DatabaseConfig  `yaml:"database"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Slack     SlackConfig     `yaml:"slack"`
	Discord   DiscordConfig   `yaml:"discord"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// DatabaseConfig holds connection settings for the MySQL-compatible server.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"` // overridden by PARTH_DB_PASSWORD if set
	Name     string `yaml:"name"`
}

// TelegramConfig holds Telegram Bot API settings. The token is read from
// the TELEGRAM_BOT_TOKEN environment variable.
type TelegramConfig struct {
	Token          string `yaml:"-"`
	PollTimeoutSec int    `yaml:"poll_timeout_sec"`
}

// SlackConfig holds settings for the Slack courier.
type SlackConfig struct {
	BotToken  string `yaml:"-"` // SLACK_BOT_TOKEN
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds settings for the Discord courier.
type DiscordConfig struct {
	Token     string `yaml:"-"` // DISCORD_BOT_TOKEN
	ChannelID string `yaml:"channel_id"`
}

// ReasoningConfig selects the model used for evaluation and chat calls.
// The API key is read from the GEMINI_API_KEY environment variable.
type ReasoningConfig struct {
	Model  string `yaml:"model"`
	APIKey string `yaml:"-"`
}

// SchedulerConfig controls the worker's cron cadences and pool size.
type SchedulerConfig struct {
	EvaluateCron  string `yaml:"evaluate_cron"` // coarse tick, per-account evaluations
	SweepCron     string `yaml:"sweep_cron"`    // fine tick, due scheduled messages
	Workers       int    `yaml:"workers"`
	JobTimeoutSec int    `yaml:"job_timeout_sec"`
}

// DashboardConfig holds the operator status server settings.
type DashboardConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config, then applies
// environment overrides for secrets.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Channel == "" {
		c.Channel = "telegram"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Name == "" {
		c.Database.Name = "parth"
	}
	if c.Telegram.PollTimeoutSec == 0 {
		c.Telegram.PollTimeoutSec = 30
	}
	if c.Reasoning.Model == "" {
		c.Reasoning.Model = "gemini-2.5-flash"
	}
	if c.Scheduler.EvaluateCron == "" {
		c.Scheduler.EvaluateCron = "0 */2 * * *"
	}
	if c.Scheduler.SweepCron == "" {
		c.Scheduler.SweepCron = "*/10 * * * *"
	}
	if c.Scheduler.Workers == 0 {
		c.Scheduler.Workers = 4
	}
	if c.Scheduler.JobTimeoutSec == 0 {
		c.Scheduler.JobTimeoutSec = 300
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = ":8422"
	}
}

// applyEnv reads secrets from the environment.
func (c *Config) applyEnv() {
	c.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Slack.BotToken = os.Getenv("SLACK_BOT_TOKEN")
	c.Discord.Token = os.Getenv("DISCORD_BOT_TOKEN")
	c.Reasoning.APIKey = os.Getenv("GEMINI_API_KEY")
	if pw := os.Getenv("PARTH_DB_PASSWORD"); pw != "" {
		c.Database.Password = pw
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Channel {
	case "telegram", "slack", "discord":
	default:
		errs = append(errs, fmt.Sprintf("channel %q is not one of telegram, slack, discord", c.Channel))
	}
	if c.Channel == "slack" && c.Slack.ChannelID == "" {
		errs = append(errs, "slack.channel_id is required when channel is slack")
	}
	if c.Channel == "discord" && c.Discord.ChannelID == "" {
		errs = append(errs, "discord.channel_id is required when channel is discord")
	}
	if c.Scheduler.Workers < 1 {
		errs = append(errs, "scheduler.workers must be at least 1")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
