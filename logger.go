package parcon

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with container-specific helpers so call
// sites log operations with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithContainer tags the logger with a container kind and capacity.
func (l *Logger) WithContainer(kind string, capacity int) *Logger {
	return &Logger{
		Logger: l.Logger.With("container", kind, "capacity", capacity),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(inserted bool, err error) {
	if err != nil {
		l.Debug("insert rejected", "inserted", inserted, "error", err)
	} else {
		l.Debug("insert completed", "inserted", inserted)
	}
}

// LogErase logs an erase operation.
func (l *Logger) LogErase(erased bool) {
	l.Debug("erase completed", "erased", erased)
}

// LogAllocate logs a slot allocation.
func (l *Logger) LogAllocate(slot int, err error) {
	if err != nil {
		l.Debug("allocate failed", "error", err)
	} else {
		l.Debug("allocate completed", "slot", slot)
	}
}

// LogSnapshot logs a snapshot save or load.
func (l *Logger) LogSnapshot(ctx context.Context, op, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"op", op,
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot completed",
			"op", op,
			"name", name,
		)
	}
}
