package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestGenerationStoreNextIsMonotonic(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewGenerationStore(rdb, "", time.Minute)
	ctx := context.Background()

	if cur, err := store.Current(ctx, "f-1"); err != nil || cur != 0 {
		t.Fatalf("expected empty counter, got %d %v", cur, err)
	}

	for want := uint64(1); want <= 3; want++ {
		got, err := store.Next(ctx, "f-1")
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	cur, err := store.Current(ctx, "f-1")
	if err != nil || cur != 3 {
		t.Fatalf("expected current 3, got %d %v", cur, err)
	}

	other, _ := store.Next(ctx, "f-2")
	if other != 1 {
		t.Fatalf("flows must not share counters, got %d", other)
	}
}

func TestGenerationStoreSetsTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewGenerationStore(rdb, "test:gen", 30*time.Second)

	if _, err := store.Next(context.Background(), "f-1"); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ttl := mr.TTL("test:gen:f-1"); ttl != 30*time.Second {
		t.Fatalf("expected 30s ttl, got %v", ttl)
	}

	mr.FastForward(31 * time.Second)
	cur, err := store.Current(context.Background(), "f-1")
	if err != nil || cur != 0 {
		t.Fatalf("expected expired counter, got %d %v", cur, err)
	}
}

func TestGenerationStoreRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	store := NewGenerationStore(rdb, "", time.Minute)
	mr.Close()

	if _, err := store.Next(context.Background(), "f-1"); !errors.Is(err, ErrGenerationRedisUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if _, err := store.Current(context.Background(), "f-1"); !errors.Is(err, ErrGenerationRedisUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
