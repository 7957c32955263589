package notifier

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vagabot/vagabot/internal/logging"
)

func TestLogSink_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(logging.New(&buf, false))

	require.NoError(t, s.Send(context.Background(), "telegram:-100", "Nova vaga cadastrada"))
	assert.Contains(t, buf.String(), "destination=telegram:-100")
	assert.Contains(t, buf.String(), "Nova vaga cadastrada")
}
