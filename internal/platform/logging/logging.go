package logging

import (
	"context"
	"log/slog"
	"os"
)

// contextKey is the key used to store the logger in a context. Using a
// custom type prevents collisions.
type contextKey string

const loggerKey = contextKey("logger")

// New creates the base JSON logger for the core.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// WithLogger returns a context carrying the given logger. The surrounding
// service typically calls this once per request or batch, enriched with its
// own correlation fields.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromCtx retrieves the scoped logger from the context, falling back to the
// process default when none was injected.
func FromCtx(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
