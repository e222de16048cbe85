package config

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide logger. Production emits JSON for log
// shipping; everything else uses the text handler. Every record carries a
// service attribute so the sweep and HTTP request logs stay separable
// downstream.
func NewLogger() *slog.Logger {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	return slog.New(newLogHandler(env, level)).With("service", "eventboard")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

func newLogHandler(env string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if env == "production" {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}
