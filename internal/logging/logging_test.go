package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(" info "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("nonsense"))
}

func TestNewRunAttachesRunID(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	t.Cleanup(func() {
		loggerMu.Lock()
		defaultLogger = prev
		loggerMu.Unlock()
	})
	Init(Config{Level: slog.LevelInfo, JSON: true, Output: &buf})

	ctx, _ := NewRun(context.Background(), "checkout")
	FromContext(ctx).Info("fired", KeyCount, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fired", entry["msg"])
	assert.Equal(t, "checkout", entry[KeyOperation])
	assert.NotEmpty(t, entry[KeyRunID])
	assert.EqualValues(t, 2, entry[KeyCount])
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.Same(t, Logger(), FromContext(context.Background()))
}
