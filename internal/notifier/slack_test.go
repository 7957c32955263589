package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagabot/vagabot/internal/logging"
)

func TestSlackSink_Send(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlackSink(srv.URL, srv.Client(), logging.Discard())
	require.NoError(t, s.Send(context.Background(), "#vagas", "Nova vaga cadastrada:\n\nVaga: Backend"))

	var payload slackPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "Nova vaga cadastrada:\n\nVaga: Backend", payload.Text)
	require.Len(t, payload.Blocks, 2)
	assert.Equal(t, "section", payload.Blocks[0].Type)
	assert.Equal(t, "mrkdwn", payload.Blocks[0].Text.Type)
	assert.Equal(t, payload.Text, payload.Blocks[0].Text.Text)
	assert.Equal(t, "divider", payload.Blocks[1].Type)
}

func TestSlackSink_ErrorStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewSlackSink(srv.URL, srv.Client(), logging.Discard())
	err := s.Send(context.Background(), "#vagas", "msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSlackSink_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := NewSlackSink(url, http.DefaultClient, logging.Discard())
	assert.Error(t, s.Send(context.Background(), "#vagas", "msg"))
}
