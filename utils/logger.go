package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Logger provides leveled, printf-style logging on top of slog.
type Logger struct {
	slog *slog.Logger
}

// LoggerOptions configures NewLoggerWithOptions.
type LoggerOptions struct {
	Writer io.Writer
	Level  slog.Leveler
	Color  bool
}

// NewLogger creates a Logger writing coloured text to stdout at info level.
func NewLogger() *Logger {
	return NewLoggerWithOptions(LoggerOptions{Color: true})
}

// NewDiscardLogger returns a Logger that drops everything. Used by tests.
func NewDiscardLogger() *Logger {
	return NewLoggerWithOptions(LoggerOptions{Writer: io.Discard})
}

// NewLoggerWithOptions builds a Logger from explicit options.
func NewLoggerWithOptions(opts LoggerOptions) *Logger {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if opts.Color {
		handler = tint.NewHandler(opts.Writer, &tint.Options{
			Level:      opts.Level,
			TimeFormat: "2006-01-02 15:04:05",
		})
	} else {
		handler = slog.NewTextHandler(opts.Writer, &slog.HandlerOptions{Level: opts.Level})
	}
	return &Logger{slog: slog.New(handler)}
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// With returns a child Logger that attaches key/value pairs to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

func (l *Logger) Info(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(slog.LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}

func (l *Logger) log(level slog.Level, format string, args ...any) {
	ctx := context.Background()
	if !l.slog.Enabled(ctx, level) {
		return
	}
	l.slog.Log(ctx, level, fmt.Sprintf(format, args...))
}
