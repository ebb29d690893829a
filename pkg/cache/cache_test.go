package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestCache spins up an in-process miniredis server, grounded on
// storj-storj's use of miniredis for redis-backed tests (upgraded to the v2
// module so it speaks the protocol go-redis/v9 expects).
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute)
}

type statValue struct {
	CommitID string `json:"commit_id"`
	Size     int64  `json:"size"`
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := StatKey("repo-1", "main", "model.bin")

	want := statValue{CommitID: "abc123", Size: 42}
	if err := c.Set(ctx, key, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got statValue
	hit, err := c.Get(ctx, key, &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var got statValue
	hit, err := c.Get(ctx, IgnoreKey("commit-1", "README.md", "deadbeef", 10), &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatal("expected cache miss")
	}
}

func TestCache_SetTTLExpires(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := New(client, time.Minute)
	ctx := context.Background()
	key := IgnoreKey("commit-1", ".git/config", "cafebabe", 0)

	if err := c.SetTTL(ctx, key, true, time.Millisecond); err != nil {
		t.Fatalf("SetTTL: %v", err)
	}
	// miniredis does not expire keys on wall-clock time; advance its clock.
	srv.FastForward(10 * time.Millisecond)

	var got bool
	hit, err := c.Get(ctx, key, &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatal("expected key to have expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := StatKey("repo-1", "main", "config.json")

	if err := c.Set(ctx, key, statValue{CommitID: "x"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var got statValue
	hit, err := c.Get(ctx, key, &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Fatal("expected key to be gone after Delete")
	}
}

func TestCache_DeleteNoKeys(t *testing.T) {
	c := newTestCache(t)
	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("Delete with no keys should be a no-op, got: %v", err)
	}
}

func TestStatKey_IgnoreKey_Distinct(t *testing.T) {
	if StatKey("r", "main", "p") == IgnoreKey("r", "p", "sha", 1) {
		t.Fatal("StatKey and IgnoreKey must not collide")
	}
}
