package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/parth-ai/parth/internal/coach"
	"github.com/parth-ai/parth/internal/db"
)

func newSweepCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Deliver due scheduled messages once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

func runSweep(cmd *cobra.Command, configPath string) error {
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

	sent, failed, err := coach.Sweep(ctx, gormDB, c, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sweep done: %d sent, %d failed\n", sent, failed)
	return nil
}
