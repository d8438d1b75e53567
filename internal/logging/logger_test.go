package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/workflow-engine/internal/config"
)

func TestNew_ReturnsNonNilLoggerForEachFormat(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		logger := New(config.LoggingConfig{Level: "info", Format: format})
		require.NotNil(t, logger)
	}
}

func TestNew_LevelGatesEnabledLogLines(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "warn", Format: "json"})
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.True(t, logger.Enabled(ctx, slog.LevelError))
}

func TestNew_DebugLevelEnablesDebugLines(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "debug", Format: "json"})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger := New(config.LoggingConfig{Level: "nonsense", Format: "json"})
	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
}
