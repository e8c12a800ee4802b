package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure RateLimitedEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)

// RateLimitedEmbedding caps the request rate to the wrapped embedder.
// Each Embed call is one request regardless of batch size.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// NewRateLimitedEmbedding allows perSecond requests with a burst of one
func NewRateLimitedEmbedding(inner driven.EmbeddingService, perSecond float64) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{
		EmbeddingService: inner,
		limiter:          rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Embed waits for a token, then embeds the batch
func (r *RateLimitedEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.Embed(ctx, texts)
}

// EmbedQuery waits for a token, then embeds the query
func (r *RateLimitedEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.EmbeddingService.EmbedQuery(ctx, query)
}
