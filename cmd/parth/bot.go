package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parth-ai/parth/internal/chat"
	"github.com/parth-ai/parth/internal/db"
)

func newBotCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram chat bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

func runBot(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	ctx, cancel := signalContext()
	defer cancel()

	c, err := buildCourier(cfg)
	if err != nil {
		return err
	}
	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}

	bot, err := chat.New(chat.Opts{
		DB:             gormDB,
		Engine:         engine,
		Courier:        c,
		Token:          cfg.Telegram.Token,
		PollTimeoutSec: cfg.Telegram.PollTimeoutSec,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Bot polling for messages")
	return bot.Run(ctx)
}
