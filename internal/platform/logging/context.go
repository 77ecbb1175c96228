package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type ctxKey struct{}

var fallback atomic.Pointer[slog.Logger]

func init() {
	fallback.Store(slog.Default())
}

// FromContext returns the request-scoped logger, or the process default
// installed by SetDefault. It never returns nil.
func FromContext(ctx context.Context) *slog.Logger {
	if logger := stored(ctx); logger != nil {
		return logger
	}

	return fallback.Load()
}

// HasLogger reports whether ctx carries its own logger.
func HasLogger(ctx context.Context) bool {
	return stored(ctx) != nil
}

func stored(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}

	logger, _ := ctx.Value(ctxKey{}).(*slog.Logger)

	return logger
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With derives the context logger with args added, as slog.Logger.With
// does. The ID middleware uses it for request_id and correlation_id; the
// reading pipeline for operation.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// SetDefault installs logger as the fallback for FromContext and as the
// slog package default.
func SetDefault(logger *slog.Logger) {
	fallback.Store(logger)
	slog.SetDefault(logger)
}
