// Package logger builds the process-wide slog logger and the request
// correlation plumbing around it.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/elitecasino/crash-backend/pkg/config"
)

// New builds the root logger from configuration. The returned LevelVar backs
// the handler level, so hot reloads can adjust verbosity without rebuilding
// the logger.
func New(cfg config.LoggerConfig, sentryEnabled bool) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(cfg.Level))

	var sink io.Writer = os.Stdout
	if cfg.File.Enabled {
		sink = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(sink, opts)
	} else {
		handler = slog.NewTextHandler(sink, opts)
	}

	if sentryEnabled {
		// sentry.Init must have run before the first record is handled.
		handler = NewFanoutHandler(
			handler,
			slogsentry.Option{Level: slog.LevelError}.NewSentryHandler(),
		)
	}

	return slog.New(NewMaskingHandler(handler)), level
}

// ParseLevel maps a configuration string onto a slog level, defaulting to
// Info for unknown values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
