package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"

	"github.com/vagabot/vagabot/internal/logging"
	"github.com/vagabot/vagabot/internal/model"
)

// Fetcher is a decorator that retries the wrapped ListingFetcher a bounded
// number of times with a fixed pause after every failed attempt.
type Fetcher struct {
	inner       model.ListingFetcher
	maxAttempts int
	interval    time.Duration
	logger      *slog.Logger
}

// NewFetcher wraps a ListingFetcher with retry logic.
// maxAttempts counts every attempt including the first; values below 1 mean 1.
func NewFetcher(inner model.ListingFetcher, maxAttempts int, interval time.Duration, logger *slog.Logger) *Fetcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Fetcher{
		inner:       inner,
		maxAttempts: maxAttempts,
		interval:    interval,
		logger:      logger,
	}
}

// Fetch returns the listing markup, or ok == false once every attempt failed.
// Ordinary failures are logged, never returned.
func (f *Fetcher) Fetch(ctx context.Context) (markup string, ok bool) {
	rpt := repeater.New(&strategy.FixedDelay{Repeats: f.maxAttempts, Delay: f.interval})

	attempt := 0
	err := rpt.Do(ctx, func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := f.inner.FetchListing(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Warn("fetch attempt failed",
				"attempt", attempt,
				"max_attempts", f.maxAttempts,
				"status", statusOf(err),
				"error", err,
			)
			return err
		}

		markup, ok = body, true
		return nil
	}, context.Canceled, context.DeadlineExceeded)

	if ok {
		return markup, true
	}
	if ctx.Err() != nil {
		f.logger.Info("fetch cancelled", "attempts", attempt, "error", ctx.Err())
		return "", false
	}

	f.logger.Log(ctx, logging.LevelCritical, "problems found when trying to get jobs",
		"attempts", attempt,
		"error", err,
	)
	return "", false
}

// statusOf extracts the HTTP status from err, zero for transport errors.
func statusOf(err error) int {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
