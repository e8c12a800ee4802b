package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure CachedEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// CachedEmbedding memoises query embeddings. Batch embedding during ingestion
// bypasses the cache. Cache failures are logged and never fail a query.
type CachedEmbedding struct {
	driven.EmbeddingService
	cache  driven.EmbeddingCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedEmbedding wraps inner with cache
func NewCachedEmbedding(inner driven.EmbeddingService, cache driven.EmbeddingCache, ttl time.Duration, logger *slog.Logger) *CachedEmbedding {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedding{EmbeddingService: inner, cache: cache, ttl: ttl, logger: logger}
}

// EmbedQuery serves from the cache when possible
func (c *CachedEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	model := c.Model()

	vec, ok, err := c.cache.Get(ctx, model, query)
	if err != nil {
		c.logger.Warn("embedding cache read failed", "error", err)
	} else if ok && len(vec) == c.Dimensions() {
		return vec, nil
	}

	vec, err = c.EmbeddingService.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, model, query, vec, c.ttl); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return vec, nil
}
