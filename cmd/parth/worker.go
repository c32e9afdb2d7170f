package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/parth-ai/parth/internal/coach"
	"github.com/parth-ai/parth/internal/db"
	"github.com/parth-ai/parth/internal/queue"
)

func newWorkerCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the scheduler and job worker pool",
		Long: "Starts the cron triggers (proactive evaluations, scheduled-send sweep) " +
			"and the worker pool that processes queued evaluation jobs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd, configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}

func runWorker(cmd *cobra.Command, configPath string) error {
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

	worker := queue.NewWorker(queue.WorkerOpts{
		DB:         gormDB,
		Workers:    cfg.Scheduler.Workers,
		JobTimeout: time.Duration(cfg.Scheduler.JobTimeoutSec) * time.Second,
	})
	worker.Handle(queue.JobEvaluateAccount, func(ctx context.Context, args json.RawMessage) error {
		var a queue.EvaluateArgs
		if err := json.Unmarshal(args, &a); err != nil {
			return fmt.Errorf("parse evaluate args: %w", err)
		}
		_, err := runner.Run(ctx, a.AccountID)
		return err
	})

	scheduler, err := queue.NewScheduler(queue.SchedulerOpts{
		DB:           gormDB,
		Courier:      c,
		EvaluateCron: cfg.Scheduler.EvaluateCron,
		SweepCron:    cfg.Scheduler.SweepCron,
	})
	if err != nil {
		return err
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Worker running: %d slots, evaluate %q, sweep %q\n",
		cfg.Scheduler.Workers, cfg.Scheduler.EvaluateCron, cfg.Scheduler.SweepCron)

	return worker.Run(ctx)
}
