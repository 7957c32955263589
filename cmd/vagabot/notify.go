package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vagabot/vagabot/internal/alert"
	"github.com/vagabot/vagabot/internal/model"
)

var notifyEmojis bool

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a sample posting alert using the configured notifier and destination.",
	RunE:  runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().BoolVar(&notifyEmojis, "emojis", false, "use the emoji layout of incremental alerts")
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func samplePosting() model.Record {
	return model.NewRecord([]string{
		"estágio em desenvolvimento de software",
		"Vagabot",
		"Remoto",
		"Análise e Desenvolvimento de Sistemas",
		"Estágio",
		"30h semanais",
		"R$ 1.200,00",
		"vale transporte",
		"31/12/2026",
	})
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, logger, closer := setup()
	defer closer.Close()

	sink, err := setupSink(cfg, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	d := alert.NewDispatcher(sink, cfg.Notification.Destination)
	if err := d.Alert(cmd.Context(), samplePosting(), notifyEmojis); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
