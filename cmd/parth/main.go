package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parth",
		Short: "Parth, a personal goals guide",
		Long:  "Parth helps people set, track and achieve their goals, reaching out proactively when it matters.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newWorkerCmd())
	cmd.AddCommand(newBotCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newEvaluateCmd())
	cmd.AddCommand(newSweepCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "parth %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func main() {
	// Secrets live in the environment; a local .env is a convenience.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("parth: load .env: %v", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
