package logger

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler delivers every record to all wrapped handlers. It backs the
// stdout-plus-Sentry setup.
type FanoutHandler struct {
	handlers []slog.Handler
}

// NewFanoutHandler creates a handler that fans records out to every handler
// in handlers.
func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

// Enabled reports whether at least one wrapped handler accepts the level.
func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h.handlers {
		if next.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// WithAttrs returns a new handler with additional attributes.
func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: next}
}

// WithGroup returns a new handler with an appended group name.
func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &FanoutHandler{handlers: next}
}

// Handle delegates to every wrapped handler that accepts the record's level.
// A failing handler does not stop delivery to the others.
func (h *FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, next := range h.handlers {
		if !next.Enabled(ctx, record.Level) {
			continue
		}
		if err := next.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
