package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vagabot/vagabot/internal/model"
)

// Ensure SlackSink implements model.Sink.
var _ model.Sink = (*SlackSink)(nil)

// SlackSink posts alerts to a Slack channel via an Incoming Webhook. The
// webhook is bound to its channel, so the destination only shows up in logs.
type SlackSink struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackSink returns a sink that posts each message to the webhook.
func NewSlackSink(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackSink {
	return &SlackSink{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Send posts message as a single section block. Any non-200 answer is an error;
// there is no retry.
func (s *SlackSink) Send(ctx context.Context, destination, message string) error {
	body, err := json.Marshal(buildPayload(message))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "destination", destination)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"` // notification fallback
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func buildPayload(message string) slackPayload {
	return slackPayload{
		Text: message,
		Blocks: []slackBlock{
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: message}},
			{Type: "divider"},
		},
	}
}
