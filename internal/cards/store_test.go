package cards

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, ttl), mr
}

func TestStorePutListDelete(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	first, err := NewCardRecord("Jordan Doe", "4242424242424242", 12, 2028, testNow)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewCardRecord("Jordan Doe", "5555555555554444", 6, 2029, testNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Put(ctx, 7, first); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, 7, second); err != nil {
		t.Fatalf("Put: %v", err)
	}

	records, err := store.List(ctx, 7)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(records))
	}
	if records[0].ID != first.ID || records[1].ID != second.ID {
		t.Fatalf("expected oldest-first ordering, got %+v", records)
	}

	if err := store.Delete(ctx, 7, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	records, err = store.List(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != second.ID {
		t.Fatalf("unexpected records after delete: %+v", records)
	}

	// Unknown card ids delete cleanly.
	if err := store.Delete(ctx, 7, "missing"); err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	rec, err := NewCardRecord("Jordan Doe", "4242424242424242", 12, 2028, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, 7, rec); err != nil {
		t.Fatal(err)
	}

	other, err := store.List(ctx, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("user 8 must see no cards, got %+v", other)
	}
}

func TestStoreTTLExpires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	rec, err := NewCardRecord("Jordan Doe", "4242424242424242", 12, 2028, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, 7, rec); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)
	records, err := store.List(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("vault must age out, got %+v", records)
	}
}
