package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionIDHandlerKeepsExplicitID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(newSessionIDHandler(base, "daemon"))

	logger.Info("explicit", slog.String(FieldSessionID, "mount-1"))
	logger.Info("implicit")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"session_id":"mount-1"`) || strings.Contains(lines[0], `"session_id":"daemon"`) {
		t.Fatalf("explicit session id should win: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"session_id":"daemon"`) {
		t.Fatalf("expected injected session id: %s", lines[1])
	}
}

func TestSessionIDHandlerNilBase(t *testing.T) {
	h := newSessionIDHandler(nil, "x")
	if h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nil base should produce a disabled handler")
	}
}

func TestFormatValueQuoting(t *testing.T) {
	tests := []struct {
		value slog.Value
		want  string
	}{
		{slog.StringValue("plain"), "plain"},
		{slog.StringValue("has space"), `"has space"`},
		{slog.StringValue(""), `""`},
		{slog.IntValue(42), "42"},
		{slog.BoolValue(true), "true"},
		{slog.Float64Value(0.3), "0.3"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.value); got != tt.want {
			t.Fatalf("formatValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
