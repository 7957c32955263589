package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vagabot/vagabot/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the harvesting daemon",
	Long:  "Start the cron scheduler; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logger, closer := setup()
	defer closer.Close()

	logger.Info("config loaded",
		"cron", cfg.Schedule.Cron,
		"max_attempts", cfg.Fetch.MaxAttempts,
		"interval", cfg.Fetch.Interval.String(),
		"limit_jobs_per_fetch", cfg.Fetch.LimitJobsPerFetch,
		"store", cfg.Store.Type,
		"notifier", cfg.Notification.Type,
	)

	ctrl, _, release := buildApp(cfg, logger)
	defer release()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctrl, cfg.Schedule.Cron, cfg.Schedule.RunOnStartup, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
