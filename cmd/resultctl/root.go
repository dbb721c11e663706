package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"face-insight-api/pkg/di"
)

// Version is the resultctl version.
const Version = "0.1.0"

// container is shared by subcommands; it is initialized before any of them run.
var container *di.Container

var rootCmd = &cobra.Command{
	Use:     "resultctl",
	Short:   "Query face detection results from the command line",
	Long:    "resultctl reads the same database and object storage as the API, configured by the same environment variables (and .env file).",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		container = di.NewContainer()
		container.ConsoleOutput = os.Stderr
		if err := container.InitializeCore(); err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			_ = container.Cleanup()
		}
	},
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
