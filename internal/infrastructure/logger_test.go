package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/config"
)

func decodeLines(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := NewLogger(config.LoggingConfig{Level: "info", Output: "console"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("test message", slog.String("key", "value"))

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
}

func TestNewLogger_File(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "salesetl.log")

	var console bytes.Buffer
	logger, closeFn, err := NewLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: logFile}, &console)
	require.NoError(t, err)

	logger.Debug("to file only")
	require.NoError(t, closeFn())

	assert.Empty(t, console.String())
	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	entries := decodeLines(t, string(content))
	require.Len(t, entries, 1)
	assert.Equal(t, "to file only", entries[0]["msg"])
}

func TestNewLogger_Both(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "salesetl.log")

	var console bytes.Buffer
	logger, closeFn, err := NewLogger(config.LoggingConfig{Output: "both", FilePath: logFile}, &console)
	require.NoError(t, err)

	logger.Warn("everywhere")
	require.NoError(t, closeFn())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, console.String(), string(content))
	assert.Contains(t, console.String(), "everywhere")
}

func TestNewLogger_UnwritableFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, closeFn, err := NewLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "app.log")}, nil)
	assert.Error(t, err)
	assert.NoError(t, closeFn())
}

func TestRunIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := NewLogger(config.LoggingConfig{Level: "info"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with run")
	logger.InfoContext(context.Background(), "without run")
	WithComponent(logger, "extract").InfoContext(ctx, "scoped")

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 3)
	assert.Equal(t, "run-123", entries[0]["run_id"])
	assert.NotContains(t, entries[1], "run_id")
	assert.Equal(t, "run-123", entries[2]["run_id"])
	assert.Equal(t, "extract", entries[2]["component"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}
