package memdb

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with memdb-specific context.
// This provides structured logging with consistent field names.
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
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithComponent tags log records with the subsystem that emitted them.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// WithChannel adds a page channel field to the logger.
func (l *Logger) WithChannel(channel int) *Logger {
	return &Logger{
		Logger: l.Logger.With("channel", channel),
	}
}

// WithPositions adds a position count field to the logger.
func (l *Logger) WithPositions(positions int) *Logger {
	return &Logger{
		Logger: l.Logger.With("positions", positions),
	}
}

// LogCompact logs a page compaction.
func (l *Logger) LogCompact(ctx context.Context, channels int, before, after int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compaction failed",
			"channels", channels,
			"retained_bytes", before,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "compaction completed",
			"channels", channels,
			"retained_before", before,
			"retained_after", after,
		)
	}
}

// LogClose logs runtime shutdown.
func (l *Logger) LogClose(ctx context.Context, stats Stats, err error) {
	if err != nil {
		l.WarnContext(ctx, "runtime closed with errors",
			"live_buffers", stats.Allocator.LiveBuffers,
			"live_bytes", stats.Allocator.LiveBytes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "runtime closed",
			"allocs", stats.Allocator.TotalAllocs,
			"peak_memory", stats.PeakMemoryUsage,
		)
	}
}
