package redis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
	"github.com/custodia-labs/checkprioritizer/internal/vector"
)

// Verify interface compliance
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache stores query vectors as packed float32 blobs.
// Keys hash the text so arbitrary queries stay bounded in size.
type EmbeddingCache struct {
	client redis.UniversalClient
	prefix string
}

// NewEmbeddingCache creates a cache under prefix + "embed:".
func NewEmbeddingCache(client redis.UniversalClient, prefix string) *EmbeddingCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &EmbeddingCache{client: client, prefix: prefix + "embed:"}
}

func (c *EmbeddingCache) key(model, text string) string {
	sum := blake2b.Sum256([]byte(text))
	return c.prefix + model + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached vector for (model, text)
func (c *EmbeddingCache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	b, err := c.client.Get(ctx, c.key(model, text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached embedding: %w", err)
	}
	vec, err := vector.Decode(b)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached embedding: %w", err)
	}
	return vec, len(vec) > 0, nil
}

// Set caches a vector; ttl 0 keeps it until evicted
func (c *EmbeddingCache) Set(ctx context.Context, model, text string, vec []float32, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(model, text), vector.Encode(vec), ttl).Err(); err != nil {
		return fmt.Errorf("cache embedding: %w", err)
	}
	return nil
}
