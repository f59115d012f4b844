package attempts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryStoreInsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.Insert(ctx, Record{Identifier: "ada@example.com", Success: false})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "" {
		t.Fatal("insert must assign an id")
	}

	if _, err := store.Insert(ctx, Record{ID: "fixed", Identifier: "ada@example.com", Success: true}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows := store.All()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != id || rows[1].ID != "fixed" {
		t.Fatalf("rows out of order: %+v", rows)
	}
}

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "guardtest")
}

func TestRedisStoreInsertRecent(t *testing.T) {
	store := newRedisTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []Record{
		{Identifier: "first@example.com", Success: false, IPAddress: "198.51.100.7", At: at},
		{Identifier: "second@example.com", Success: true, UserID: "u1", At: at.Add(time.Minute)},
		{Identifier: "third@example.com", Success: true, UserID: "u2", At: at.Add(2 * time.Minute)},
	}
	for _, record := range records {
		if _, err := store.Insert(ctx, record); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	// Newest first.
	if recent[0].Identifier != "third@example.com" || recent[1].Identifier != "second@example.com" {
		t.Fatalf("unexpected order: %+v", recent)
	}
	if recent[0].ID == "" {
		t.Fatal("stored row lost its id")
	}
	if !recent[0].At.Equal(at.Add(2 * time.Minute)) {
		t.Fatalf("timestamp drifted: %v", recent[0].At)
	}

	if rows, err := store.Recent(ctx, 0); err != nil || rows != nil {
		t.Fatalf("n<=0 must return nothing, got %v, %v", rows, err)
	}
}
