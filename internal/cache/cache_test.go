package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestNilClientAlwaysUnsynced(t *testing.T) {
	c := New(nil, "v1", zerolog.Nop())
	ctx := context.Background()

	if c.IsSynced(ctx, "id1", "fp1") {
		t.Fatalf("nil client must report not synced")
	}
	c.MarkSynced(ctx, "id1", "fp1", time.Hour)
	c.Invalidate(ctx, "id1")
	if c.Connected(ctx) {
		t.Fatalf("nil client must report disconnected")
	}
	if c.IsSynced(ctx, "id1", "fp1") {
		t.Fatalf("marks against a nil client must not stick")
	}
}

func TestUnreachableBackendDegradesToUnsynced(t *testing.T) {
	// A closed port: every command errors, which must read as "not synced"
	// so synchronization is never silently skipped.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := New(client, "v1", zerolog.Nop())
	ctx := context.Background()

	if c.IsSynced(ctx, "id1", "fp1") {
		t.Fatalf("unreachable backend must report not synced")
	}
	c.MarkSynced(ctx, "id1", "fp1", time.Hour) // must not panic or propagate
	if c.Connected(ctx) {
		t.Fatalf("unreachable backend must report disconnected")
	}
}

func TestKeyIncludesSchemaVersion(t *testing.T) {
	a := New(nil, "v1", zerolog.Nop())
	b := New(nil, "v2", zerolog.Nop())
	if a.key("abc") == b.key("abc") {
		t.Fatalf("cache keys must be versioned")
	}
	if a.key("abc") != "sync:product:abc:v1" {
		t.Fatalf("unexpected key format: %s", a.key("abc"))
	}
}
