package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler copies each record to every sink whose level admits it.
type teeHandler []slog.Handler

// Tee combines sinks into one handler. A single sink is returned as is.
func Tee(sinks ...slog.Handler) slog.Handler {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return teeHandler(sinks)
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sink := range t {
		if sink.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle reports every sink failure; one failing sink does not starve the rest.
func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, sink := range t {
		if !sink.Enabled(ctx, r.Level) {
			continue
		}
		if err := sink.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return t
	}
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return t
	}
	return t.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) derive(fn func(slog.Handler) slog.Handler) teeHandler {
	out := make(teeHandler, len(t))
	for i, sink := range t {
		out[i] = fn(sink)
	}
	return out
}
