package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithWriter(&buf), WithLevel(slog.LevelDebug))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Info("server started", "port", 8080)

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Errorf("level should be printed, got %q", out)
	}
	if !strings.Contains(out, "server started") {
		t.Errorf("message should be printed, got %q", out)
	}
	if !strings.Contains(out, `port="8080"`) {
		t.Errorf("attrs should be printed, got %q", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithWriter(&buf), WithLevel(slog.LevelWarn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below the level must be dropped, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("messages at the level must pass, got %q", out)
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithWriter(&buf), WithJSON())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected JSON attrs, got %q", out)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithWriter(&buf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.With("component", "queue").Info("consuming")

	out := buf.String()
	if !strings.Contains(out, `component="queue"`) {
		t.Errorf("With attrs should be carried, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":    levelTrace,
		"debug":    slog.LevelDebug,
		"info":     slog.LevelInfo,
		"warn":     slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": levelCritical,
		"bogus":    slog.LevelInfo,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded")
	l.Error("also discarded")
}
