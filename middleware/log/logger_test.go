package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ashmount/ClanBot/config"
)

func fileLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()

	logFile := filepath.Join(t.TempDir(), "test.log")
	log, err := NewLogger(&config.LoggingConfig{
		Level:    level,
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	return log, logFile
}

func readLogEntry(t *testing.T, logFile string) map[string]any {
	t.Helper()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	return entry
}

func TestNewLogger_StdoutJSON(t *testing.T) {
	log, err := NewLogger(&config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)

	log.Info("test message")
	assert.NoError(t, log.Sync())
}

func TestNewLogger_WritesStructuredJSON(t *testing.T) {
	log, logFile := fileLogger(t, "info")

	log.Info("wallet adjusted",
		zap.String("user_id", "user123"),
		zap.Int64("delta", 500),
		zap.Bool("admin", true),
	)
	require.NoError(t, log.Close())

	entry := readLogEntry(t, logFile)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "wallet adjusted", entry["message"])
	assert.Equal(t, "user123", entry["user_id"])
	assert.Equal(t, float64(500), entry["delta"])
	assert.Equal(t, true, entry["admin"])
	assert.NotEmpty(t, entry["timestamp"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	log, logFile := fileLogger(t, "warn")

	log.Debug("debug line")
	log.Info("info line")
	log.Warn("warn line")
	log.Error("error line")
	require.NoError(t, log.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "debug line")
	assert.NotContains(t, string(content), "info line")
	assert.Contains(t, string(content), "warn line")
	assert.Contains(t, string(content), "error line")
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "console.log")
	log, err := NewLogger(&config.LoggingConfig{
		Level:    "info",
		Format:   "text",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)

	log.Info("console line", zap.String("key1", "value1"))
	require.NoError(t, log.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "console line")
	assert.Contains(t, string(content), "value1")

	var entry map[string]any
	assert.Error(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
}

func TestTraceIDFlowsIntoEntries(t *testing.T) {
	log, logFile := fileLogger(t, "info")

	ctx := WithTraceID(context.Background(), "trace-abc-123")
	log.InfoContext(ctx, "traced message")
	require.NoError(t, log.Close())

	entry := readLogEntry(t, logFile)
	assert.Equal(t, "trace-abc-123", entry["trace_id"])
}

func TestContextWithoutTraceID(t *testing.T) {
	log, logFile := fileLogger(t, "info")

	log.InfoContext(context.Background(), "untraced message")
	require.NoError(t, log.Close())

	entry := readLogEntry(t, logFile)
	_, hasTraceID := entry["trace_id"]
	assert.False(t, hasTraceID)
}

func TestWithFieldsChaining(t *testing.T) {
	log, logFile := fileLogger(t, "info")

	log.WithFields(zap.String("component", "reconciler")).
		WithTraceID("trace-chain-456").
		Info("chained")
	require.NoError(t, log.Close())

	entry := readLogEntry(t, logFile)
	assert.Equal(t, "reconciler", entry["component"])
	assert.Equal(t, "trace-chain-456", entry["trace_id"])
}

func TestParseLogLevel(t *testing.T) {
	for _, input := range []string{"debug", "info", "warn", "error", "fatal"} {
		_, err := parseLogLevel(input)
		assert.NoError(t, err)
	}

	// Unknown levels fall back to info.
	level, err := parseLogLevel("invalid")
	require.NoError(t, err)
	expected, _ := parseLogLevel("info")
	assert.Equal(t, expected, level)
}

func TestLoggerClose(t *testing.T) {
	log, logFile := fileLogger(t, "info")
	log.Info("before close")
	require.NoError(t, log.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "before close")
}
