package driven

import (
	"context"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// VectorIndex persists index entries and answers nearest-neighbour queries.
// Entries are immutable: there is no update or per-entry delete path.
type VectorIndex interface {
	// Add persists entries in order. Entries whose ID is already present are
	// skipped; the returned count covers newly written entries only.
	Add(ctx context.Context, entries []*domain.IndexEntry) (int, error)

	// Search returns up to k entries by descending cosine similarity to the
	// query vector, ties broken by insertion order. Returned entries carry
	// their embeddings. An empty index yields an empty slice.
	Search(ctx context.Context, query []float32, k int) ([]*domain.RankedEntry, error)

	// EnsureSpace records the embedding model and dimension on first use and
	// fails with domain.ErrEmbeddingMismatch if the index was built with another.
	EnsureSpace(ctx context.Context, model string, dimensions int) error

	// Info returns the recorded embedding space and entry count
	Info(ctx context.Context) (*domain.IndexInfo, error)

	// Reset removes every entry and the recorded embedding space
	Reset(ctx context.Context) error

	// Ping verifies the index is reachable
	Ping(ctx context.Context) error

	// Close releases the index handle
	Close() error
}
