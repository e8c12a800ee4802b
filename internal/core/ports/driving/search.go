package driving

import (
	"context"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// SearchService retrieves ranked evidence for a query
type SearchService interface {
	// Search embeds the query and returns at most opts.K results.
	// Non-positive K is rejected with domain.ErrInvalidInput.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error)
}
