package notifier

import (
	"context"
	"log/slog"

	"github.com/vagabot/vagabot/internal/model"
)

// Ensure LogSink implements model.Sink.
var _ model.Sink = (*LogSink)(nil)

// LogSink writes alerts to the logger instead of delivering them.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink that logs each message via slog.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Send logs the message. Returns nil (stdout logging does not fail).
func (s *LogSink) Send(_ context.Context, destination, message string) error {
	s.logger.Info("new job alert", "destination", destination, "message", message)
	return nil
}
