package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewLock(t *testing.T) {
	_, client := setupTestRedis(t)

	lock1 := NewLock(client, "")
	lock2 := NewLock(client, "")

	if lock1.prefix != DefaultPrefix+"lock:" {
		t.Errorf("unexpected prefix %q", lock1.prefix)
	}
	if lock1.OwnerID() == "" {
		t.Error("expected non-empty owner ID")
	}
	if lock1.OwnerID() == lock2.OwnerID() {
		t.Errorf("expected unique owner IDs, got same: %s", lock1.OwnerID())
	}
}

func TestLock_AcquireExclusive(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	ingest := NewLock(client, "test:")
	other := NewLock(client, "test:")

	acquired, err := ingest.Acquire(ctx, "ingest:index", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Fatal("expected to acquire lock")
	}
	if !mr.Exists("test:lock:ingest:index") {
		t.Error("expected lock key under prefix")
	}

	for name, l := range map[string]*Lock{"other owner": other, "same owner": ingest} {
		acquired, err = l.Acquire(ctx, "ingest:index", 10*time.Second)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if acquired {
			t.Errorf("%s: expected acquire of held lock to fail", name)
		}
	}

	// Unrelated names do not contend
	acquired, err = other.Acquire(ctx, "ingest:other", 10*time.Second)
	if err != nil || !acquired {
		t.Errorf("expected independent lock, got %v %v", acquired, err)
	}
}

func TestLock_Release(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	owner := NewLock(client, "")
	intruder := NewLock(client, "")

	if err := owner.Release(ctx, "never-held"); err != nil {
		t.Errorf("unexpected error releasing unheld lock: %v", err)
	}

	if _, err := owner.Acquire(ctx, "l", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A foreign release leaves the lock in place
	if err := intruder.Release(ctx, "l"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired, _ := intruder.Acquire(ctx, "l", time.Minute); acquired {
		t.Fatal("expected lock to still be held by owner")
	}

	if err := owner.Release(ctx, "l"); err != nil {
		t.Fatalf("unexpected error on release: %v", err)
	}
	if acquired, _ := intruder.Acquire(ctx, "l", time.Minute); !acquired {
		t.Error("expected to acquire lock after release")
	}
}

func TestLock_Expires(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	first := NewLock(client, "")
	second := NewLock(client, "")

	if acquired, _ := first.Acquire(ctx, "l", time.Second); !acquired {
		t.Fatal("expected to acquire lock")
	}
	mr.FastForward(2 * time.Second)

	if acquired, _ := second.Acquire(ctx, "l", time.Second); !acquired {
		t.Error("expected expired lock to be acquirable")
	}
}

func TestLock_Extend(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	owner := NewLock(client, "")
	other := NewLock(client, "")

	if err := owner.Extend(ctx, "l", time.Second); !errors.Is(err, ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld for unheld lock, got %v", err)
	}

	if _, err := owner.Acquire(ctx, "l", time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := owner.Extend(ctx, "l", 10*time.Second); err != nil {
		t.Fatalf("unexpected error on extend: %v", err)
	}
	if ttl := mr.TTL(owner.key("l")); ttl <= time.Second {
		t.Errorf("expected extended TTL, got %v", ttl)
	}

	if err := other.Extend(ctx, "l", 20*time.Second); !errors.Is(err, ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld for foreign lock, got %v", err)
	}
}

func TestLock_Ping(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := NewLock(client, "")

	if err := lock.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}

	mr.Close()
	if err := lock.Ping(context.Background()); err == nil {
		t.Error("expected ping error after server shutdown")
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.Close()

	if _, err := Connect(context.Background(), "not-a-url"); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}
