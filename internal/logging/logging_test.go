package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Log(context.Background(), LevelCritical, "problems found")
	logger.Error("plain error")

	out := buf.String()
	assert.Contains(t, out, "level=CRITICAL msg=\"problems found\"")
	assert.Contains(t, out, "level=ERROR msg=\"plain error\"")
}

func TestNew_DebugGate(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	New(&buf, true).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vagabot.log")
	logger, closer := Setup(Options{File: path, MaxSizeMB: 1})

	logger.Info("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
