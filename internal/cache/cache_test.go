package cache

import (
	"testing"
	"time"

	"github.com/GregMSThompson/imihigo-backend/pkg/helpers"
)

func TestKey(t *testing.T) {
	if got := Key("stats", "8", "q1"); got != "imihigo:stats:8:q1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	ctx := helpers.TestCtx()
	c := New(nil, time.Minute, "")

	if c.Enabled() {
		t.Fatalf("cache without client should be disabled")
	}
	if v, err := c.Version(ctx); err != nil || v != 0 {
		t.Fatalf("expected version 0, got %d %v", v, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	key, err := c.VersionedKey(ctx, "annual", "8")
	if err != nil || key != "imihigo:v0:annual:8" {
		t.Fatalf("unexpected key %q %v", key, err)
	}
	if err := c.SetJSON(ctx, key, map[string]int{"a": 1}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	var out map[string]int
	found, err := c.GetJSON(ctx, key, &out)
	if err != nil || found {
		t.Fatalf("disabled cache should never hit, got %v %v", found, err)
	}
	release, err := c.Lock(ctx, "migration", time.Second)
	if err != nil {
		t.Fatalf("unexpected lock error %v", err)
	}
	release()
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected close error %v", err)
	}
}

func TestVersionedKeyNamespace(t *testing.T) {
	ctx := helpers.TestCtx()

	a, err := New(nil, time.Minute, "3f2a9c01b7de").VersionedKey(ctx, "quarter", "8", "q1")
	if err != nil || a != "imihigo:c3f2a9c01b7de:v0:quarter:8:q1" {
		t.Fatalf("unexpected key %q %v", a, err)
	}
	b, err := New(nil, time.Minute, "0000aaaa1111").VersionedKey(ctx, "quarter", "8", "q1")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if a == b {
		t.Fatalf("different catalogs must not share cache keys")
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache
	if c.Enabled() {
		t.Fatalf("nil cache should be disabled")
	}
}
