package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerInvalidLevel(t *testing.T) {
	_, err := newLogger(Config{Level: "verbose", Encoding: "console"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := newLogger(Config{Level: level, Encoding: "json"})
		require.NoError(t, err, "level %s", level)
		require.NotNil(t, logger)
	}
}

func TestWithContextRunID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := globalLogger
	globalLogger = zap.New(core)
	defer func() { globalLogger = previous }()

	ctx := context.WithValue(context.Background(), RunIDKey, "run-42")
	WithContext(ctx).Info("started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "run-42", entries[0].ContextMap()["run_id"])
}

func TestWithContextNoRunID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := globalLogger
	globalLogger = zap.New(core)
	defer func() { globalLogger = previous }()

	WithContext(context.Background()).Info("started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].ContextMap(), "run_id")
}
