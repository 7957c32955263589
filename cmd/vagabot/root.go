package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/vagabot/vagabot/internal/alert"
	"github.com/vagabot/vagabot/internal/config"
	"github.com/vagabot/vagabot/internal/extract"
	"github.com/vagabot/vagabot/internal/logging"
	"github.com/vagabot/vagabot/internal/model"
	"github.com/vagabot/vagabot/internal/notifier"
	"github.com/vagabot/vagabot/internal/pipeline"
	"github.com/vagabot/vagabot/internal/portal"
	"github.com/vagabot/vagabot/internal/ratelimit"
	"github.com/vagabot/vagabot/internal/retry"
	"github.com/vagabot/vagabot/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "vagabot",
	Short: "Internship board watcher",
	Long:  "Vagabot logs into the job portal, stores every posting it sees and alerts on new ones.",
	// Default to `run` so that a cron entry can invoke the bare binary.
	RunE:         runOnce,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: VAGABOT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > VAGABOT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("VAGABOT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// setup loads the config and builds the logger described by it. Failures are
// fatal: they are logged to stdout and the process exits.
func setup() (*config.Config, *slog.Logger, io.Closer) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logging.New(os.Stdout, debug).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closer := logging.Setup(logging.Options{
		Debug:      debug,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	return cfg, logger, closer
}

// openStore returns the configured store and a func releasing it.
func openStore(cfg *config.Config, logger *slog.Logger) (model.JobStore, func(), error) {
	switch cfg.Store.Type {
	case "supabase":
		s, err := store.NewSupabaseStore(cfg.Store.SupabaseURL, cfg.Store.SupabaseKey)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using supabase store")
		return s, func() {}, nil
	case "memory":
		logger.Warn("using memory store, nothing survives this process")
		return store.NewMemoryStore(), func() {}, nil
	default:
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite store", "path", cfg.Store.Path)
		return s, func() { s.Close() }, nil
	}
}

func setupSink(cfg *config.Config, logger *slog.Logger) (model.Sink, error) {
	var sink model.Sink
	switch cfg.Notification.Type {
	case "telegram":
		r, err := notifier.NewTelegramRouter(cfg.Notification.TelegramToken, cfg.Notification.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("using telegram notifier", "destination", cfg.Notification.Destination)
		sink = r
	case "slack":
		logger.Info("using slack notifier")
		sink = notifier.NewSlackSink(cfg.Notification.WebhookURL, &http.Client{Timeout: cfg.Notification.Timeout}, logger)
	default:
		return notifier.NewLogSink(logger), nil
	}

	if cfg.Notification.MinDelay > 0 {
		sink = ratelimit.NewSink(sink, ratelimit.NewDestinationLimiter(cfg.Notification.MinDelay))
	}
	return sink, nil
}

func buildController(cfg *config.Config, jobStore model.JobStore, sink model.Sink, logger *slog.Logger) *pipeline.Controller {
	client := portal.NewClient(portal.Params{
		LoginURL:      cfg.Portal.LoginURL,
		ListingURL:    cfg.Portal.ListingURL,
		Credentials:   cfg.Portal.Credentials,
		ListingParams: cfg.Portal.ListingParams,
		Timeout:       cfg.Portal.Timeout,
	}, nil)
	fetcher := retry.NewFetcher(client, cfg.Fetch.MaxAttempts, cfg.Fetch.Interval, logger)
	extractor := extract.NewExtractor(extract.NewRowDetector(model.FieldCount, cfg.Extract.ForbiddenMarkers, logger))
	dispatcher := alert.NewDispatcher(sink, cfg.Notification.Destination)

	return pipeline.NewController(fetcher, extractor, jobStore, dispatcher, cfg.Fetch.LimitJobsPerFetch, logger)
}

// buildApp wires everything a command that touches the portal needs.
func buildApp(cfg *config.Config, logger *slog.Logger) (*pipeline.Controller, model.JobStore, func()) {
	jobStore, release, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	sink, err := setupSink(cfg, logger)
	if err != nil {
		release()
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	return buildController(cfg, jobStore, sink, logger), jobStore, release
}
