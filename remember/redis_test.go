package remember

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "guardtest"), mr
}

func TestRedisSaveFind(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	token := Token{
		UserID:        "u1",
		Selector:      "aaaabbbbccccddddeeeeffff",
		ValidatorHash: "deadbeef",
		ExpiresAt:     expires,
	}
	if err := store.Save(ctx, token); err != nil {
		t.Fatalf("save: %v", err)
	}

	row, err := store.FindBySelector(ctx, token.Selector)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if row == nil {
		t.Fatal("saved row not found")
	}
	if row.UserID != "u1" || row.ValidatorHash != "deadbeef" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.ExpiresAt.Unix() != expires.Unix() {
		t.Fatalf("expiry drifted: %v vs %v", row.ExpiresAt, expires)
	}
}

func TestRedisFindUnknownSelector(t *testing.T) {
	store, _ := newRedisTestStore(t)

	row, err := store.FindBySelector(context.Background(), "missing")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if row != nil {
		t.Fatalf("unknown selector must yield nil, got %+v", row)
	}
}

func TestRedisDeleteBySelector(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	token := Token{UserID: "u1", Selector: "sel1", ValidatorHash: "x", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, token); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.DeleteBySelector(ctx, "sel1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if row, _ := store.FindBySelector(ctx, "sel1"); row != nil {
		t.Fatalf("row survived deletion: %+v", row)
	}
	// The per-user index entry goes with it.
	if members, _ := mr.SMembers("guardtest:remember:user:u1"); len(members) != 0 {
		t.Fatalf("user index still holds %v", members)
	}

	// Deleting an unknown selector is not an error.
	if err := store.DeleteBySelector(ctx, "missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestRedisDeleteAllForUser(t *testing.T) {
	store, _ := newRedisTestStore(t)
	ctx := context.Background()

	for _, selector := range []string{"s1", "s2", "s3"} {
		if err := store.Save(ctx, Token{UserID: "u1", Selector: selector, ValidatorHash: "x", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := store.Save(ctx, Token{UserID: "u2", Selector: "other", ValidatorHash: "x", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := store.DeleteAllForUser(ctx, "u1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	for _, selector := range []string{"s1", "s2", "s3"} {
		if row, _ := store.FindBySelector(ctx, selector); row != nil {
			t.Fatalf("selector %q survived revocation", selector)
		}
	}
	if row, _ := store.FindBySelector(ctx, "other"); row == nil {
		t.Fatal("other user's token must survive")
	}
}

func TestRedisPurgeExpired(t *testing.T) {
	store, mr := newRedisTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, Token{UserID: "u1", Selector: "short", ValidatorHash: "x", ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, Token{UserID: "u1", Selector: "long", ValidatorHash: "x", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Let the TTL reclaim the short-lived token key; its index entry
	// lingers until a purge reconciles it.
	mr.FastForward(5 * time.Minute)

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}

	members, err := mr.SMembers("guardtest:remember:user:u1")
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 1 || members[0] != "long" {
		t.Fatalf("user index = %v, want [long]", members)
	}
}

func TestManagerOverRedis(t *testing.T) {
	store, _ := newRedisTestStore(t)
	m := NewManager(store, time.Hour)
	ctx := context.Background()

	token, err := m.Issue(ctx, "u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, replacement, err := m.Redeem(ctx, token)
	if err != nil || userID != "u1" {
		t.Fatalf("redeem: user=%q err=%v", userID, err)
	}
	if _, _, err := m.Redeem(ctx, token); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("burned token redeemed again: %v", err)
	}
	if _, _, err := m.Redeem(ctx, replacement); err != nil {
		t.Fatalf("replacement redeem: %v", err)
	}
}
