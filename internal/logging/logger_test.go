package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"khata/internal/config"
	"khata/internal/logging"
)

func TestNew_LevelFromConfig(t *testing.T) {
	logger, err := logging.New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := logging.New(config.LogConfig{Level: "loud"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestFromContext(t *testing.T) {
	fallback := zap.NewNop()
	assert.Same(t, fallback, logging.FromContext(context.Background(), fallback))
	assert.NotNil(t, logging.FromContext(context.Background(), nil))

	scoped := zap.NewExample()
	ctx := logging.WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, logging.FromContext(ctx, fallback))
}

func TestPrintfAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	logging.NewPrintfAdapter(logger).Printf("wrote %d messages", 3)
	logging.NewErrorPrintfAdapter(logger).Printf("broker %s down", "k1")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "wrote 3 messages", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, logging.RequestID(context.Background()))

	ctx := logging.WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", logging.RequestID(ctx))
}
