package domain

import (
	"fmt"
	"time"
)

// SearchMode determines the ranking strategy
type SearchMode string

const (
	SearchModeSimilarity SearchMode = "similarity" // Nearest neighbours only
	SearchModeMMR        SearchMode = "mmr"        // Maximal Marginal Relevance (default)
)

// Retrieval defaults
const (
	DefaultK      = 4
	DefaultFetchK = 20
	DefaultLambda = 0.5
)

// SearchOptions configures a search request
type SearchOptions struct {
	K            int     `json:"k"`
	UseDiversity bool    `json:"use_diversity"`
	FetchK       int     `json:"fetch_k,omitempty"` // MMR candidate pool size
	Lambda       float64 `json:"lambda"`            // 1 = relevance only, 0 = diversity only
}

// DefaultSearchOptions returns the defaults used by the original retriever
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		K:            DefaultK,
		UseDiversity: true,
		FetchK:       DefaultFetchK,
		Lambda:       DefaultLambda,
	}
}

// Mode returns the ranking strategy implied by the options
func (o SearchOptions) Mode() SearchMode {
	if o.UseDiversity {
		return SearchModeMMR
	}
	return SearchModeSimilarity
}

// Validate rejects options that cannot produce a meaningful ranking
func (o SearchOptions) Validate() error {
	if o.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, o.K)
	}
	if o.Lambda < 0 || o.Lambda > 1 {
		return fmt.Errorf("%w: lambda must be within [0, 1], got %g", ErrInvalidInput, o.Lambda)
	}
	return nil
}

// PoolSize returns the MMR candidate pool size, never smaller than K
func (o SearchOptions) PoolSize() int {
	fetchK := o.FetchK
	if fetchK <= 0 {
		fetchK = DefaultFetchK
	}
	if fetchK < o.K {
		fetchK = o.K
	}
	return fetchK
}

// RankedEntry is an index entry with its similarity to the query.
// Scores stay internal to the core; callers receive QueryResults.
type RankedEntry struct {
	Entry *IndexEntry
	Score float64
}

// QueryResult is one ranked piece of evidence
type QueryResult struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
	Rank     int               `json:"rank"` // 1-based
}

// SearchResult represents the result of a search query
type SearchResult struct {
	Query   string         `json:"query"`
	Mode    SearchMode     `json:"mode"`
	Results []*QueryResult `json:"results"`
	Took    time.Duration  `json:"took" swaggertype:"integer" example:"1500000"`
}

// NewQueryResults converts ranked entries into caller-facing results in order
func NewQueryResults(ranked []*RankedEntry) []*QueryResult {
	results := make([]*QueryResult, 0, len(ranked))
	for i, r := range ranked {
		results = append(results, &QueryResult{
			Text:     r.Entry.Text,
			Metadata: r.Entry.Metadata,
			Rank:     i + 1,
		})
	}
	return results
}
