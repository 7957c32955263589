package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vagabot/vagabot/internal/model"
	"github.com/vagabot/vagabot/internal/notifier"
	"github.com/vagabot/vagabot/internal/store"
)

var checkWide bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch once, print postings, exit",
	Long:  "Dry run: logs in, extracts the listing and prints what would be stored. Nothing is written and no alert is sent.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVarP(&checkWide, "wide", "w", false, "print every field")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, closer := setup()
	defer closer.Close()

	logger.Info("check mode: the configured store and notifier are not used")

	memStore := store.NewMemoryStore()
	ctrl := buildController(cfg, memStore, notifier.NewLogSink(logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := ctrl.Run(ctx)
	if err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(1)
	}
	if !rep.Fetched {
		logger.Error("listing could not be fetched")
		os.Exit(1)
	}

	records, err := memStore.Search(ctx, model.Fragment{})
	if err != nil {
		return err
	}
	fmt.Println(renderJobs(records, checkWide))
	fmt.Printf("\n%d postings extracted\n", len(records))

	logger.Info("check complete")
	return nil
}
