package bitplane

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bitplane-specific helpers.
// Field names are kept consistent across log lines.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON logs to w at or above level.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable logs to w at or
// above level.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// LogFile logs the outcome of one input.
func (l *Logger) LogFile(ctx context.Context, path string, width, height int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "file failed",
			"path", path,
			"error", err,
		)

		return
	}

	l.InfoContext(ctx, "processing",
		"path", path,
		"width", width,
		"height", height,
	)
}

// LogRun logs the outcome of a whole count.
func (l *Logger) LogRun(ctx context.Context, files int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "count failed",
			"files", files,
			"error", err,
		)

		return
	}

	l.DebugContext(ctx, "count completed",
		"files", files,
	)
}
