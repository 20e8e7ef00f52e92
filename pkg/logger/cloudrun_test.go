package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	return event
}

func TestCloudRunHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelInfo)).With("request_id", "abc")

	log.Warn("submission rejected", "error", errors.New("month not in quarter"), "quarterId", "q1")

	event := decodeLine(t, &buf)
	if event["severity"] != "WARNING" || event["message"] != "submission rejected" {
		t.Fatalf("unexpected event %v", event)
	}
	data, ok := event["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", event["data"])
	}
	if data["request_id"] != "abc" || data["quarterId"] != "q1" || data["error"] != "month not in quarter" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestCloudRunHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelWarn))

	log.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestCloudRunHandlerGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerTo(&buf, slog.LevelDebug)).WithGroup("cache")

	log.Debug("miss", "key", "stats:v1:8:q1")

	data := decodeLine(t, &buf)["data"].(map[string]any)
	if data["cache.key"] != "stats:v1:8:q1" {
		t.Fatalf("expected dotted group key, got %v", data)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: expected %v got %v", in, want, got)
		}
	}
}
