package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "info", input: "info", want: slog.LevelInfo},
		{name: "warn", input: "warn", want: slog.LevelWarn},
		{name: "error", input: "error", want: slog.LevelError},
		{name: "unknown falls back to info", input: "verbose", want: slog.LevelInfo},
		{name: "empty falls back to info", input: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Fatalf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *Logger {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	return &Logger{Logger: slog.New(handler)}
}

func TestWithContextAttachesRequestFields(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, OwnerIDKey, int64(9))

	var buf bytes.Buffer

	newBufferLogger(&buf).InfoCtx(ctx, "transfer accepted")

	out := buf.String()

	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Fatalf("expected request id in output, got %q", out)
	}

	if !strings.Contains(out, `"owner_id":9`) {
		t.Fatalf("expected owner id in output, got %q", out)
	}
}

func TestWithContextIgnoresMissingFields(t *testing.T) {
	var buf bytes.Buffer

	newBufferLogger(&buf).ErrorCtx(context.Background(), "lookup failed")

	out := buf.String()

	if strings.Contains(out, "request_id") || strings.Contains(out, "owner_id") {
		t.Fatalf("expected no context fields on a bare context, got %q", out)
	}

	if !strings.Contains(out, "lookup failed") {
		t.Fatalf("expected the message in output, got %q", out)
	}
}

func TestWithContextIgnoresZeroOwner(t *testing.T) {
	ctx := context.WithValue(context.Background(), OwnerIDKey, int64(0))

	var buf bytes.Buffer

	newBufferLogger(&buf).WarnCtx(ctx, "rate limited")

	if strings.Contains(buf.String(), "owner_id") {
		t.Fatalf("zero owner must not be logged, got %q", buf.String())
	}
}

func TestNewFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{name: "json", format: "json"},
		{name: "text", format: "text"},
		{name: "default", format: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if logger := New(slog.LevelInfo, tt.format); logger == nil || logger.Logger == nil {
				t.Fatal("expected a usable logger")
			}
		})
	}
}
