package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger for empty context")
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := ToContext(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	_, ctx = With(ctx, "uid", "u-1")
	FromContext(ctx).Info("submission created", "indicator_id", "3")

	out := buf.String()
	if !strings.Contains(out, "uid=u-1") || !strings.Contains(out, "indicator_id=3") {
		t.Fatalf("unexpected log line %q", out)
	}
}
