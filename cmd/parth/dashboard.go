package main

import (
	"github.com/spf13/cobra"

	"github.com/parth-ai/parth/internal/dashboard"
	"github.com/parth-ai/parth/internal/db"
)

func newDashboardCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Start the operator status server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, configPath, addr)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config value)")
	return cmd
}

func runDashboard(cmd *cobra.Command, configPath, addr string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	ctx, cancel := signalContext()
	defer cancel()

	if addr == "" {
		addr = cfg.Dashboard.Addr
	}
	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:   gormDB,
		Addr: addr,
		Out:  cmd.OutOrStdout(),
	})
}
