package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTestStore(t *testing.T, lifetime time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "guardtest", lifetime), mr
}

func TestRedisGetSet(t *testing.T) {
	store, _ := newRedisTestStore(t, 0)
	ctx := context.Background()

	if value, err := store.Get(ctx, "logged_in"); err != nil || value != "" {
		t.Fatalf("absent key: value=%q err=%v", value, err)
	}

	if err := store.Set(ctx, "logged_in", "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, err := store.Get(ctx, "logged_in"); err != nil || value != "u1" {
		t.Fatalf("get: value=%q err=%v", value, err)
	}

	if err := store.Delete(ctx, "logged_in"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if value, _ := store.Get(ctx, "logged_in"); value != "" {
		t.Fatalf("deleted key still readable: %q", value)
	}
}

func TestRedisSetAppliesLifetime(t *testing.T) {
	store, mr := newRedisTestStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Set(ctx, "logged_in", "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("guardtest:session:" + store.ID()); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if value, _ := store.Get(ctx, "logged_in"); value != "" {
		t.Fatalf("session outlived its lifetime: %q", value)
	}
}

func TestRedisClear(t *testing.T) {
	store, _ := newRedisTestStore(t, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "logged_in", "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "flash", "welcome"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, key := range []string{"logged_in", "flash"} {
		if value, _ := store.Get(ctx, key); value != "" {
			t.Fatalf("key %q survived clear: %q", key, value)
		}
	}

	// The session stays usable under the same identifier.
	if err := store.Set(ctx, "flash", "bye"); err != nil {
		t.Fatalf("set after clear: %v", err)
	}
}

func TestRedisRegenerateIDMigratesData(t *testing.T) {
	store, mr := newRedisTestStore(t, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "logged_in", "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	oldID := store.ID()

	if err := store.RegenerateID(ctx, false); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if store.ID() == oldID {
		t.Fatal("identifier did not change")
	}
	if value, _ := store.Get(ctx, "logged_in"); value != "u1" {
		t.Fatalf("data lost across regeneration: %q", value)
	}
	// destroyOld=false leaves the old data to expire on its own.
	if !mr.Exists("guardtest:session:" + oldID) {
		t.Fatal("old session data should remain when destroyOld is false")
	}
}

func TestRedisRegenerateIDDestroyOld(t *testing.T) {
	store, mr := newRedisTestStore(t, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "logged_in", "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	oldID := store.ID()

	if err := store.RegenerateID(ctx, true); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if mr.Exists("guardtest:session:" + oldID) {
		t.Fatal("old session data must be destroyed")
	}
	if value, _ := store.Get(ctx, "logged_in"); value != "u1" {
		t.Fatalf("data lost across regeneration: %q", value)
	}
}

func TestRedisRegenerateIDEmptySession(t *testing.T) {
	store, _ := newRedisTestStore(t, 0)

	// Nothing written yet; regeneration still switches identifiers.
	oldID := store.ID()
	if err := store.RegenerateID(context.Background(), true); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if store.ID() == oldID {
		t.Fatal("identifier did not change")
	}
}

func TestRedisResumeExistingID(t *testing.T) {
	store, mr := newRedisTestStore(t, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "logged_in", "u1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	resumed := NewRedisStoreWithID(client, "guardtest", 0, store.ID())
	if value, err := resumed.Get(ctx, "logged_in"); err != nil || value != "u1" {
		t.Fatalf("resumed session: value=%q err=%v", value, err)
	}
}
