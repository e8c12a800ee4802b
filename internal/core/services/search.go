package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driving"
	"github.com/custodia-labs/checkprioritizer/internal/metrics"
	"github.com/custodia-labs/checkprioritizer/internal/runtime"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// SearchServiceConfig holds dependencies for the search service
type SearchServiceConfig struct {
	Index    driven.VectorIndex
	Services *runtime.Services // Provides the embedding service shared with ingestion
	Metrics  *metrics.Metrics  // Optional
	Logger   *slog.Logger
}

// searchService implements the SearchService interface
type searchService struct {
	index    driven.VectorIndex
	services *runtime.Services
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(cfg SearchServiceConfig) driving.SearchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &searchService{
		index:    cfg.Index,
		services: cfg.Services,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Search embeds the query and ranks index entries by similarity, optionally
// re-ranked for diversity.
func (s *searchService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	start := time.Now()
	mode := opts.Mode()

	results, err := s.search(ctx, query, opts)
	took := time.Since(start)
	s.metrics.ObserveSearch(string(mode), took, len(results), err)
	if err != nil {
		return nil, err
	}

	return &domain.SearchResult{
		Query:   query,
		Mode:    mode,
		Results: domain.NewQueryResults(results),
		Took:    took,
	}, nil
}

func (s *searchService) search(ctx context.Context, query string, opts domain.SearchOptions) ([]*domain.RankedEntry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	embedder := s.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrNotConfigured)
	}

	info, err := s.index.Info(ctx)
	if err != nil {
		return nil, indexUnavailable(err)
	}
	if info.Entries == 0 {
		return []*domain.RankedEntry{}, nil
	}
	if err := checkSpace(info, embedder); err != nil {
		return nil, err
	}

	queryVec, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if info.Dimensions > 0 && len(queryVec) != info.Dimensions {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, index has %d",
			domain.ErrEmbeddingMismatch, len(queryVec), info.Dimensions)
	}

	fetch := opts.K
	if opts.UseDiversity {
		fetch = opts.PoolSize()
	}

	ranked, err := s.index.Search(ctx, queryVec, fetch)
	if err != nil {
		return nil, indexUnavailable(err)
	}

	if opts.UseDiversity {
		ranked = mmrRerank(ranked, opts.K, opts.Lambda)
	} else if len(ranked) > opts.K {
		ranked = ranked[:opts.K]
	}

	s.logger.Debug("search complete",
		"mode", opts.Mode(),
		"k", opts.K,
		"pool", fetch,
		"results", len(ranked))
	return ranked, nil
}

// checkSpace verifies the embedder matches the space the index was built with
func checkSpace(info *domain.IndexInfo, embedder driven.EmbeddingService) error {
	if info.Model == "" {
		return nil
	}
	if info.Model != embedder.Model() || info.Dimensions != embedder.Dimensions() {
		return fmt.Errorf("%w: index built with %s/%d, embedder is %s/%d",
			domain.ErrEmbeddingMismatch, info.Model, info.Dimensions, embedder.Model(), embedder.Dimensions())
	}
	return nil
}

func indexUnavailable(err error) error {
	if errors.Is(err, domain.ErrIndexUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
}
