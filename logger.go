package bondgraph

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with bond-builder field helpers, so every record
// uses the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON records to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// WithFrame tags records with a frame number.
func (l *Logger) WithFrame(frame int) *Logger {
	return &Logger{Logger: l.Logger.With("frame", frame)}
}

// LogBuild records the outcome of one bond-building pass.
func (l *Logger) LogBuild(ctx context.Context, particles, bonds int, index IndexKind, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "bond build failed",
			"particles", particles,
			"index", string(index),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "bond build completed",
		"particles", particles,
		"bonds", bonds,
		"index", string(index),
		"elapsed", elapsed,
	)
}
