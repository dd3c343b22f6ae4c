package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogHandler(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		logger := slog.New(newLogHandler(&out, HandlerTypeJSON, LogLevelWarn))
		logger.Info("Dropped below the level.")
		assert.Zero(t, out.Len())

		logger.Warn("Digit list is empty.", "key", "n1")
		record := make(map[string]any)
		require.NoError(t, json.Unmarshal(out.Bytes(), &record))
		assert.Equal(t, "Digit list is empty.", record["msg"])
		assert.Equal(t, "n1", record["key"])
	})

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		logger := slog.New(newLogHandler(&out, HandlerTypeText, LogLevelDebug))
		logger.Debug("Parsed numeral.", "digits", 3)
		assert.Contains(t, out.String(), "digits=3")
	})
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, slogLevel(LogLevelDebug))
	assert.Equal(t, slog.LevelInfo, slogLevel(LogLevelInfo))
	assert.Equal(t, slog.LevelWarn, slogLevel(LogLevelWarn))
	assert.Equal(t, slog.LevelError, slogLevel(LogLevelError))
}
