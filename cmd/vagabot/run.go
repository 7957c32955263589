package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one activation and exit",
	Long: "Fetch the listing once. The first run seeds the store silently; later runs store and alert new postings. " +
		"Activation failures are logged and never change the exit status.",
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, logger, closer := setup()
	defer closer.Close()

	ctrl, _, release := buildApp(cfg, logger)
	defer release()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl.Execute(ctx)
	return nil
}
