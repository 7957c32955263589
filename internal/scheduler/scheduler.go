package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner is one activation of the pipeline. It must not fail: errors are the
// runner's to log.
type Runner interface {
	Execute(ctx context.Context)
}

// Scheduler triggers the runner on a cron expression. Activations never
// overlap: a tick that fires while the previous activation is still running
// is skipped.
type Scheduler struct {
	runner       Runner
	spec         string
	runOnStartup bool
	logger       *slog.Logger
}

// NewScheduler creates a scheduler firing on a standard five-field cron spec
// (descriptors such as "@every 30m" are accepted too).
func NewScheduler(runner Runner, spec string, runOnStartup bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		spec:         spec,
		runOnStartup: runOnStartup,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled, then waits for a running activation to
// finish. It returns nil on graceful shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	sched, err := cron.ParseStandard(s.spec)
	if err != nil {
		return fmt.Errorf("can't parse %s: %w", s.spec, err)
	}

	cl := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	job := c.Schedule(sched, cron.FuncJob(func() { s.runner.Execute(ctx) }))

	s.logger.Info("starting scheduler",
		"spec", s.spec,
		"first", sched.Next(time.Now()).Format(time.RFC3339),
		"id", job,
	)

	if s.runOnStartup {
		s.runner.Execute(ctx)
	}

	c.Start()
	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
