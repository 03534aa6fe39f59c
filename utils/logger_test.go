package utils

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFormatsAndFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOptions(LoggerOptions{Writer: &buf, Level: slog.LevelInfo})

	l.Debug("hidden %d", 1)
	l.Info("collected %d listings", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %q", out)
	}
	if !strings.Contains(out, "collected 42 listings") {
		t.Errorf("info line missing: %q", out)
	}
}

func TestLoggerWithAttachesAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOptions(LoggerOptions{Writer: &buf}).With("run_id", "abc")

	l.Warn("page skipped")
	if !strings.Contains(buf.String(), "run_id=abc") {
		t.Errorf("attr missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
