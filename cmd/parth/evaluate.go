package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/parth-ai/parth/internal/coach"
	"github.com/parth-ai/parth/internal/db"
)

func newEvaluateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "evaluate <account-id>",
		Short: "Run one proactive evaluation for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("account id %q: %w", args[0], err)
			}
			return runEvaluate(cmd, configPath, uint(id))
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

func runEvaluate(cmd *cobra.Command, configPath string, accountID uint) error {
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

	runner := &coach.Runner{DB: gormDB, Engine: engine, Courier: c}
	result, err := runner.Run(ctx, accountID)
	if err != nil {
		return err
	}

	blob, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(blob))
	return nil
}
