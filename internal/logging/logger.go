// Package logging builds the engine's structured logger. Grounded on
// backend/internal/infrastructure/logger/logger.go's slog wrapper,
// trimmed to New since this engine has no per-request context
// enrichment to add beyond what slog.Logger.With already gives callers.
package logging

import (
	"log/slog"
	"os"

	"github.com/smilemakc/workflow-engine/internal/config"
)

// New builds a *slog.Logger configured per cfg: JSON or text handler,
// level gated by cfg.Level, source locations added only at debug level.
func New(cfg config.LoggingConfig) *slog.Logger {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
