package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/vagabot/vagabot/internal/extract"
	"github.com/vagabot/vagabot/internal/model"
)

// Mode is the store state an activation starts from.
type Mode int

const (
	// Unseeded stores have never been loaded; the activation bulk-seeds them
	// without alerting.
	Unseeded Mode = iota
	// Seeded stores get an incremental diff with an alert per new record.
	Seeded
)

func (m Mode) String() string {
	switch m {
	case Unseeded:
		return "unseeded"
	case Seeded:
		return "seeded"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Fetcher returns the listing markup, ok == false when it could not be had.
type Fetcher interface {
	Fetch(ctx context.Context) (markup string, ok bool)
}

// Extractor turns markup into records, keeping the first limit when limit > 0.
type Extractor interface {
	Extract(markup string, limit int) ([]model.Record, error)
}

// Alerter delivers one alert per new record.
type Alerter interface {
	Alert(ctx context.Context, r model.Record, emojis bool) error
}

// Report summarises one activation.
type Report struct {
	Mode      Mode
	Fetched   bool
	Extracted int
	Inserted  int
	Alerted   int
}

// Controller owns the full activation pipeline:
// fetch → extract → (seed | dedup → insert → alert).
type Controller struct {
	fetcher   Fetcher
	extractor Extractor
	store     model.JobStore
	alerter   Alerter
	limit     int
	logger    *slog.Logger
}

// NewController creates a controller wired with all its dependencies.
// limit bounds how many records an incremental activation looks at.
func NewController(
	fetcher Fetcher,
	extractor Extractor,
	store model.JobStore,
	alerter Alerter,
	limit int,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		alerter:   alerter,
		limit:     limit,
		logger:    logger,
	}
}

// Execute runs one activation and never fails: errors and panics are logged
// and the activation simply ends. Records inserted before a failure stay.
func (c *Controller) Execute(ctx context.Context) {
	defer func() {
		if x := recover(); x != nil {
			c.logger.Error("activation panicked", "panic", x, "stack", string(debug.Stack()))
		}
	}()

	c.logger.Info("fetch jobs...")
	rep, err := c.Run(ctx)
	if err != nil {
		c.logger.Error("activation failed",
			"mode", rep.Mode,
			"inserted", rep.Inserted,
			"alerted", rep.Alerted,
			"error", err,
		)
	}
}

// Run performs one activation and reports what happened. An absent listing is
// not an error: the report comes back with Fetched == false.
func (c *Controller) Run(ctx context.Context) (Report, error) {
	var rep Report

	created, err := c.store.Created(ctx)
	if err != nil {
		return rep, fmt.Errorf("reading store state: %w", err)
	}
	rep.Mode = Unseeded
	if created {
		rep.Mode = Seeded
	}

	markup, ok := c.fetcher.Fetch(ctx)
	if !ok {
		c.logger.Warn("no listing fetched, skipping activation", "mode", rep.Mode)
		return rep, nil
	}
	rep.Fetched = true

	switch rep.Mode {
	case Unseeded:
		err = c.seed(ctx, markup, &rep)
	case Seeded:
		err = c.diff(ctx, markup, &rep)
	}
	if err != nil {
		return rep, err
	}

	c.logger.Info(fmt.Sprintf("%d jobs inserted.", rep.Inserted), "mode", rep.Mode, "extracted", rep.Extracted)
	return rep, nil
}

// seed stores every record on the page without a dedup check or alerts, then
// flips the store to Seeded.
func (c *Controller) seed(ctx context.Context, markup string, rep *Report) error {
	records, err := c.extractor.Extract(markup, extract.Unbounded)
	if err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	rep.Extracted = len(records)

	for _, r := range records {
		if err := c.store.Insert(ctx, r); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		rep.Inserted++
	}

	if err := c.store.MarkCreated(ctx); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	c.logger.Info("database created and data was loaded successfully", "records", rep.Inserted)
	return nil
}

// diff inserts and alerts the records among the first limit that the store
// has not seen. Insert happens before the alert, so a failed delivery never
// causes a second alert for the same posting.
func (c *Controller) diff(ctx context.Context, markup string, rep *Report) error {
	records, err := c.extractor.Extract(markup, c.limit)
	if err != nil {
		return fmt.Errorf("diffing: %w", err)
	}
	rep.Extracted = len(records)

	for _, r := range records {
		seen, err := c.Exists(ctx, r)
		if err != nil {
			return fmt.Errorf("diffing: %w", err)
		}
		if seen {
			continue
		}

		if err := c.store.Insert(ctx, r); err != nil {
			return fmt.Errorf("diffing: %w", err)
		}
		rep.Inserted++
		c.logger.Debug("new job", "title", r.Title(), "company", r["company"])

		if err := c.alerter.Alert(ctx, r, true); err != nil {
			return fmt.Errorf("diffing: %w", err)
		}
		rep.Alerted++
	}
	return nil
}

// Exists reports whether a stored record holds every field of r.
func (c *Controller) Exists(ctx context.Context, r model.Record) (bool, error) {
	found, err := c.store.Search(ctx, model.FragmentOf(r))
	if err != nil {
		return false, fmt.Errorf("checking %q: %w", r.Title(), err)
	}
	return len(found) > 0, nil
}

// UpdateRecord overwrites stored records matching f with r.
func (c *Controller) UpdateRecord(ctx context.Context, f model.Fragment, r model.Record) (int, error) {
	n, err := c.store.Update(ctx, f, r)
	if err != nil {
		return 0, fmt.Errorf("updating records: %w", err)
	}
	c.logger.Info("records updated", "count", n)
	return n, nil
}

// RemoveRecord deletes stored records matching f.
func (c *Controller) RemoveRecord(ctx context.Context, f model.Fragment) (int, error) {
	n, err := c.store.Remove(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("removing records: %w", err)
	}
	c.logger.Info("records removed", "count", n)
	return n, nil
}
