package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagabot/vagabot/internal/config"
	"github.com/vagabot/vagabot/internal/logging"
	"github.com/vagabot/vagabot/internal/model"
	"github.com/vagabot/vagabot/internal/notifier"
	"github.com/vagabot/vagabot/internal/ratelimit"
)

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"salary= R$ 900 ", "deadline=01/02/2027"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"salary": "R$ 900", "deadline": "01/02/2027"}, got)

	_, err = parseSets(nil)
	assert.Error(t, err)

	_, err = parseSets([]string{"email=x@y"})
	assert.Error(t, err, "unknown field")

	_, err = parseSets([]string{"salary"})
	assert.Error(t, err, "missing value separator")
}

func TestRenderJobs(t *testing.T) {
	records := []model.Record{samplePosting()}

	narrow := renderJobs(records, false)
	assert.Contains(t, narrow, "Vaga")
	assert.Contains(t, narrow, "Vagabot")
	assert.NotContains(t, narrow, "Bolsa/Salário")

	wide := renderJobs(records, true)
	assert.Contains(t, wide, "Bolsa/Salário")
	assert.Contains(t, wide, "R$ 1.200,00")
}

func TestSetupSink(t *testing.T) {
	logger := logging.Discard()

	sink, err := setupSink(&config.Config{Notification: config.NotificationConfig{Type: "log", MinDelay: time.Second}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notifier.LogSink{}, sink, "log sink is never paced")

	sink, err = setupSink(&config.Config{Notification: config.NotificationConfig{
		Type:       "slack",
		WebhookURL: "https://hooks.slack.com/services/T/B/X",
		Timeout:    time.Second,
		MinDelay:   time.Second,
	}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.Sink{}, sink)

	sink, err = setupSink(&config.Config{Notification: config.NotificationConfig{
		Type:       "slack",
		WebhookURL: "https://hooks.slack.com/services/T/B/X",
	}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &notifier.SlackSink{}, sink)
}
