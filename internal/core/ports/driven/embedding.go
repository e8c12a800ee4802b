package driven

import (
	"context"
	"time"
)

// EmbeddingService generates text embeddings.
// Ingestion and retrieval must share one implementation so vectors live in the same space.
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts, one per input in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}

// EmbeddingCache stores query embeddings keyed by model and text
type EmbeddingCache interface {
	// Get returns the cached vector, or ok=false on a miss
	Get(ctx context.Context, model, text string) (vector []float32, ok bool, err error)

	// Set stores a vector with the given TTL (0 = no expiry)
	Set(ctx context.Context, model, text string, vector []float32, ttl time.Duration) error
}
