package logger

import (
	"context"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"info", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", "", true},
	}
	for _, c := range cases {
		got, err := ParseLogLevel(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseLogLevel(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseLogLevel(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseLogLevel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseLogFormat(t *testing.T) {
	if f, err := ParseLogFormat("console"); err != nil || f != TextFormat {
		t.Fatalf("ParseLogFormat(console) = %q, %v", f, err)
	}
	if _, err := ParseLogFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewZapLogger_DefaultsAndWith(t *testing.T) {
	log, err := NewZapLogger(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	child := log.With("component", "test")
	if child == nil {
		t.Fatal("expected child logger")
	}
	child.Info("message from child")
}

func TestWithContext_RequestID(t *testing.T) {
	log, err := NewZapLogger(Config{Level: ErrorLevel, Format: TextFormat})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := ContextWithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Fatalf("RequestIDFromContext = %q, want req-123", got)
	}
	if log.WithContext(ctx) == nil {
		t.Fatal("expected logger with context")
	}

	// A context without a request ID returns the same logger.
	if log.WithContext(context.Background()) != Logger(log) {
		t.Fatal("expected identical logger when no request id present")
	}
}

func TestRequestIDFromContext_Nil(t *testing.T) {
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}
