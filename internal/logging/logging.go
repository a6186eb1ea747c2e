// Package logging builds the structured logger used across pomotimer.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"pomotimer/internal/models"
)

// ParseLevel maps a configuration level name onto a slog level.
// Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w. The level in envLevel, when set, wins over the config.
func New(cfg models.LoggingConfig, w io.Writer, envLevel string) *slog.Logger {
	level := cfg.Level
	if envLevel != "" {
		level = envLevel
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup creates a stderr logger and installs it as the slog default
func Setup(cfg models.LoggingConfig, envLevel string) *slog.Logger {
	logger := New(cfg, os.Stderr, envLevel)
	slog.SetDefault(logger)
	return logger
}
