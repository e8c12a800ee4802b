package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

// ErrLockNotHeld is returned by Extend when another owner holds the lock or it expired
var ErrLockNotHeld = errors.New("lock not held by this instance")

// Lock implements DistributedLock using SET NX with a TTL.
// The value is a per-instance owner ID so only the holder can release or extend.
type Lock struct {
	client  redis.UniversalClient
	prefix  string
	ownerID string
}

// NewLock creates a lock whose keys live under prefix + "lock:".
// An empty prefix uses DefaultPrefix.
func NewLock(client redis.UniversalClient, prefix string) *Lock {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	hostname, _ := os.Hostname()
	return &Lock{
		client:  client,
		prefix:  prefix + "lock:",
		ownerID: fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), uuid.NewString()),
	}
}

func (l *Lock) key(name string) string {
	return l.prefix + name
}

// Acquire returns true if this instance now holds the lock.
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(name), l.ownerID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Deletes KEYS[1] only while it still holds ARGV[1]
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Release drops the lock if this instance holds it. Releasing an expired
// or foreign lock is not an error.
func (l *Lock) Release(ctx context.Context, name string) error {
	err := releaseScript.Run(ctx, l.client, []string{l.key(name)}, l.ownerID).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Resets the TTL of KEYS[1] to ARGV[2] ms while it still holds ARGV[1]
var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	end
	return 0
`)

// Extend pushes out the expiry of a held lock.
func (l *Lock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	n, err := extendScript.Run(ctx, l.client, []string{l.key(name)}, l.ownerID, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("extend lock %s: %w", name, ErrLockNotHeld)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (l *Lock) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// OwnerID identifies this lock holder in logs
func (l *Lock) OwnerID() string {
	return l.ownerID
}
