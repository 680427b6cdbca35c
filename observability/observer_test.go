package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/converse/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  string
	}{
		{observability.LevelVerbose, "DEBUG"},
		{observability.LevelInfo, "INFO"},
		{observability.LevelWarning, "WARN"},
		{observability.LevelError, "ERROR"},
		{observability.Level(2), "TRACE"},
		{observability.Level(25), "FATAL"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{observability.LevelVerbose, slog.LevelDebug},
		{observability.LevelInfo, slog.LevelInfo},
		{observability.LevelWarning, slog.LevelWarn},
		{observability.LevelError, slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	obs := observability.NewSlogObserver(logger)
	observability.Emit(context.Background(), obs, "controller.send.start", observability.LevelInfo, "test", map[string]any{
		"session": "abc",
	})

	out := buf.String()
	if !strings.Contains(out, "controller.send.start") {
		t.Errorf("log output missing event type: %s", out)
	}
	if !strings.Contains(out, "source=test") {
		t.Errorf("log output missing source attribute: %s", out)
	}
	if !strings.Contains(out, "session=abc") {
		t.Errorf("log output missing data attribute: %s", out)
	}
}

type countingObserver struct {
	events []observability.Event
}

func (c *countingObserver) OnEvent(_ context.Context, event observability.Event) {
	c.events = append(c.events, event)
}

func TestMultiObserver(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}

	multi := observability.NewMultiObserver(a, nil, b)
	observability.Emit(context.Background(), multi, "x", observability.LevelInfo, "test", nil)

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("got %d/%d events, want 1/1", len(a.events), len(b.events))
	}
}

func TestEmit_SetsTimestamp(t *testing.T) {
	c := &countingObserver{}
	observability.Emit(context.Background(), c, "x", observability.LevelInfo, "test", nil)

	if len(c.events) != 1 {
		t.Fatalf("got %d events, want 1", len(c.events))
	}
	if c.events[0].Timestamp.IsZero() {
		t.Error("Emit should stamp the event")
	}
}

func TestRegistry(t *testing.T) {
	if _, err := observability.GetObserver("noop"); err != nil {
		t.Errorf("noop observer should be pre-registered: %v", err)
	}
	if _, err := observability.GetObserver("slog"); err != nil {
		t.Errorf("slog observer should be pre-registered: %v", err)
	}
	if _, err := observability.GetObserver("missing"); err == nil {
		t.Error("unknown observer name should error")
	}

	custom := &countingObserver{}
	observability.RegisterObserver("custom", custom)

	got, err := observability.GetObserver("custom")
	if err != nil {
		t.Fatalf("GetObserver failed after register: %v", err)
	}
	if got != observability.Observer(custom) {
		t.Error("registry returned a different observer")
	}
}
