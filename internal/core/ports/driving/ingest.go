package driving

import (
	"context"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// IngestService builds the vector index from tabular claim sources
type IngestService interface {
	// Ingest loads, normalises, chunks, embeds and persists the requested files.
	// Missing files and malformed rows are skipped and reported in the result.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
}
