package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the vagabot harvester.
type Config struct {
	Portal       PortalConfig
	Fetch        FetchConfig
	Extract      ExtractConfig
	Schedule     ScheduleConfig
	Store        StoreConfig
	Notification NotificationConfig
	Log          LogConfig
}

// PortalConfig locates the job portal and the account used to log in.
type PortalConfig struct {
	LoginURL      string
	ListingURL    string
	Credentials   map[string]string // login form fields, e.g. username/password
	ListingParams map[string]string // query string of the listing request
	Timeout       time.Duration     // per-request timeout
}

// FetchConfig bounds the retry loop and the incremental window.
type FetchConfig struct {
	MaxAttempts       int
	Interval          time.Duration // sleep between failed attempts
	LimitJobsPerFetch int           // records an incremental activation looks at; 0 means all
}

// ExtractConfig controls which field groups are dropped.
type ExtractConfig struct {
	ForbiddenMarkers []string
}

// ScheduleConfig drives the start daemon.
type ScheduleConfig struct {
	Cron         string // standard five-field cron expression
	RunOnStartup bool
}

// StoreConfig selects the backing store.
type StoreConfig struct {
	Type        string // "sqlite", "supabase" or "memory"
	Path        string // sqlite database file
	SupabaseURL string
	SupabaseKey string
}

// NotificationConfig selects the sink alerts go through.
type NotificationConfig struct {
	Type          string // "telegram", "slack" or "log"
	Destination   string // e.g. "telegram:-100123456"
	TelegramToken string
	WebhookURL    string // required if type is "slack"
	Timeout       time.Duration
	MinDelay      time.Duration // minimum gap between two alerts to the same destination
}

// LogConfig adds an optional rotating log file next to stdout.
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

const (
	defaultMaxAttempts = 3
	defaultInterval    = time.Minute
	defaultLimit       = 10
	defaultCron        = "*/30 * * * *"
	defaultDBPath      = "vagabot.db"
	defaultTimeout     = 30 * time.Second
	defaultMinDelay    = 3 * time.Second
	slackWebhookPrefix = "https://hooks.slack.com/"
)

var defaultForbidden = []string{"Email:"}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Portal       rawPortalConfig       `yaml:"portal" jsonschema:"required"`
	Fetch        rawFetchConfig        `yaml:"fetch"`
	Extract      rawExtractConfig      `yaml:"extract"`
	Schedule     rawScheduleConfig     `yaml:"schedule"`
	Store        rawStoreConfig        `yaml:"store"`
	Notification rawNotificationConfig `yaml:"notification"`
	Log          rawLogConfig          `yaml:"log"`
}

type rawPortalConfig struct {
	LoginURL      string            `yaml:"login_url" jsonschema:"required,description=form login endpoint"`
	ListingURL    string            `yaml:"listing_url" jsonschema:"required,description=page listing the open positions"`
	Credentials   map[string]string `yaml:"credentials" jsonschema:"description=form fields posted to login_url"`
	ListingParams map[string]string `yaml:"listing_params" jsonschema:"description=query parameters of the listing request"`
	Timeout       string            `yaml:"timeout" jsonschema:"example=30s"`
}

type rawFetchConfig struct {
	MaxAttempts       int    `yaml:"max_attempts" jsonschema:"minimum=1,default=3"`
	Interval          string `yaml:"interval" jsonschema:"default=1m"`
	LimitJobsPerFetch *int   `yaml:"limit_jobs_per_fetch" jsonschema:"minimum=0,default=10"`
}

type rawExtractConfig struct {
	ForbiddenMarkers []string `yaml:"forbidden_markers" jsonschema:"description=groups containing any of these are skipped"`
}

type rawScheduleConfig struct {
	Cron         string `yaml:"cron" jsonschema:"default=*/30 * * * *"`
	RunOnStartup bool   `yaml:"run_on_startup"`
}

type rawStoreConfig struct {
	Type        string `yaml:"type" jsonschema:"enum=sqlite,enum=supabase,enum=memory,default=sqlite"`
	Path        string `yaml:"path" jsonschema:"default=vagabot.db"`
	SupabaseURL string `yaml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key"`
}

type rawNotificationConfig struct {
	Type          string `yaml:"type" jsonschema:"enum=telegram,enum=slack,enum=log,default=log"`
	Destination   string `yaml:"destination" jsonschema:"example=telegram:-100123456"`
	TelegramToken string `yaml:"telegram_token"`
	WebhookURL    string `yaml:"webhook_url"`
	Timeout       string `yaml:"timeout"`
	MinDelay      string `yaml:"min_delay" jsonschema:"default=3s"`
}

type rawLogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// Variables from a .env file in the working directory are loaded first, so
// secrets can stay out of the YAML and be referenced as ${VAR}.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	portalTimeout, err := duration("portal.timeout", raw.Portal.Timeout, defaultTimeout)
	if err != nil {
		return nil, err
	}
	interval, err := duration("fetch.interval", raw.Fetch.Interval, defaultInterval)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := duration("notification.timeout", raw.Notification.Timeout, defaultTimeout)
	if err != nil {
		return nil, err
	}
	minDelay, err := duration("notification.min_delay", raw.Notification.MinDelay, defaultMinDelay)
	if err != nil {
		return nil, err
	}

	maxAttempts := raw.Fetch.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}
	limit := defaultLimit
	if raw.Fetch.LimitJobsPerFetch != nil {
		limit = *raw.Fetch.LimitJobsPerFetch
	}

	forbidden := raw.Extract.ForbiddenMarkers
	if forbidden == nil {
		forbidden = defaultForbidden
	}

	cronSpec := strings.TrimSpace(raw.Schedule.Cron)
	if cronSpec == "" {
		cronSpec = defaultCron
	}

	storeType := raw.Store.Type
	if storeType == "" {
		storeType = "sqlite"
	}
	dbPath := raw.Store.Path
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	notifyType := raw.Notification.Type
	if notifyType == "" {
		notifyType = "log"
	}

	return &Config{
		Portal: PortalConfig{
			LoginURL:      raw.Portal.LoginURL,
			ListingURL:    raw.Portal.ListingURL,
			Credentials:   raw.Portal.Credentials,
			ListingParams: raw.Portal.ListingParams,
			Timeout:       portalTimeout,
		},
		Fetch: FetchConfig{
			MaxAttempts:       maxAttempts,
			Interval:          interval,
			LimitJobsPerFetch: limit,
		},
		Extract:  ExtractConfig{ForbiddenMarkers: forbidden},
		Schedule: ScheduleConfig{Cron: cronSpec, RunOnStartup: raw.Schedule.RunOnStartup},
		Store: StoreConfig{
			Type:        storeType,
			Path:        dbPath,
			SupabaseURL: raw.Store.SupabaseURL,
			SupabaseKey: raw.Store.SupabaseKey,
		},
		Notification: NotificationConfig{
			Type:          notifyType,
			Destination:   raw.Notification.Destination,
			TelegramToken: raw.Notification.TelegramToken,
			WebhookURL:    raw.Notification.WebhookURL,
			Timeout:       notifyTimeout,
			MinDelay:      minDelay,
		},
		Log: LogConfig{
			File:       raw.Log.File,
			MaxSizeMB:  raw.Log.MaxSizeMB,
			MaxBackups: raw.Log.MaxBackups,
		},
	}, nil
}

func duration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	if cfg.Portal.LoginURL == "" {
		return fmt.Errorf("portal.login_url is required")
	}
	if cfg.Portal.ListingURL == "" {
		return fmt.Errorf("portal.listing_url is required")
	}
	if cfg.Portal.Timeout <= 0 {
		return fmt.Errorf("portal.timeout must be positive, got %v", cfg.Portal.Timeout)
	}

	if cfg.Fetch.MaxAttempts < 1 {
		return fmt.Errorf("fetch.max_attempts must be at least 1, got %d", cfg.Fetch.MaxAttempts)
	}
	if cfg.Fetch.Interval < 0 {
		return fmt.Errorf("fetch.interval must not be negative, got %v", cfg.Fetch.Interval)
	}
	if cfg.Fetch.LimitJobsPerFetch < 0 {
		return fmt.Errorf("fetch.limit_jobs_per_fetch must not be negative, got %d", cfg.Fetch.LimitJobsPerFetch)
	}

	if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q: %w", cfg.Schedule.Cron, err)
	}

	switch cfg.Store.Type {
	case "sqlite", "memory":
	case "supabase":
		if cfg.Store.SupabaseURL == "" || cfg.Store.SupabaseKey == "" {
			return fmt.Errorf("store.supabase_url and store.supabase_key are required when type is \"supabase\"")
		}
	default:
		return fmt.Errorf("store.type must be sqlite, supabase or memory, got %q", cfg.Store.Type)
	}

	switch cfg.Notification.Type {
	case "log":
	case "telegram":
		if cfg.Notification.TelegramToken == "" {
			return fmt.Errorf("notification.telegram_token is required when type is \"telegram\"")
		}
		if !strings.HasPrefix(cfg.Notification.Destination, "telegram:") {
			return fmt.Errorf("notification.destination must look like telegram:<chat>, got %q", cfg.Notification.Destination)
		}
		u, err := url.Parse(cfg.Notification.Destination)
		if err != nil {
			return fmt.Errorf("notification.destination %q: %w", cfg.Notification.Destination, err)
		}
		if mode := u.Query().Get("parseMode"); mode != "" && mode != "HTML" {
			return fmt.Errorf("notification.destination parseMode must be HTML, got %q", mode)
		}
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be telegram, slack or log, got %q", cfg.Notification.Type)
	}
	if cfg.Notification.MinDelay < 0 {
		return fmt.Errorf("notification.min_delay must not be negative, got %v", cfg.Notification.MinDelay)
	}

	return nil
}

// Schema returns the JSON schema of the YAML config file.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		FieldNameTag:              "yaml",
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(&rawConfig{})
	s.Title = "vagabot configuration"
	return s
}
