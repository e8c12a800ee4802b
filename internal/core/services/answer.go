package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driving"
	"github.com/custodia-labs/checkprioritizer/internal/metrics"
	"github.com/custodia-labs/checkprioritizer/internal/runtime"
)

// Ensure answerService implements AnswerService
var _ driving.AnswerService = (*answerService)(nil)

// AnswerServiceConfig holds dependencies for the answer service
type AnswerServiceConfig struct {
	Search   driving.SearchService
	Services *runtime.Services // Provides the answer generator
	Options  domain.SearchOptions
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// answerService implements the AnswerService interface
type answerService struct {
	search   driving.SearchService
	services *runtime.Services
	options  domain.SearchOptions
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAnswerService creates a new AnswerService.
// Options supply the retrieval settings; K is overridden per request.
func NewAnswerService(cfg AnswerServiceConfig) driving.AnswerService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := cfg.Options
	if opts == (domain.SearchOptions{}) {
		opts = domain.DefaultSearchOptions()
	}
	return &answerService{
		search:   cfg.Search,
		services: cfg.Services,
		options:  opts,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Ask retrieves k sources and hands them to the generator as a numbered evidence block
func (s *answerService) Ask(ctx context.Context, query string, k int) (*domain.Answer, error) {
	start := time.Now()
	answer, err := s.ask(ctx, query, k)
	s.metrics.ObserveAnswer(time.Since(start), err)
	return answer, err
}

func (s *answerService) ask(ctx context.Context, query string, k int) (*domain.Answer, error) {
	generator := s.services.AnswerGenerator()
	if generator == nil {
		return nil, fmt.Errorf("%w: no answer generator", domain.ErrNotConfigured)
	}

	opts := s.options
	opts.K = k
	result, err := s.search.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	text, err := generator.Generate(ctx, query, FormatContext(result.Results))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Debug("answer generated", "model", generator.Model(), "sources", len(result.Results))
	return &domain.Answer{
		Query:   query,
		Answer:  text,
		Sources: domain.SourcesFrom(result.Results),
	}, nil
}

// FormatContext renders results as "Source [i]: text (Label: label)" blocks
// separated by blank lines, numbered from 1.
func FormatContext(results []*domain.QueryResult) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		label := r.Metadata[domain.MetaClassLabel]
		if label == "" {
			label = "N/A"
		}
		blocks = append(blocks, fmt.Sprintf("Source [%d]: %s (Label: %s)", i+1, r.Text, label))
	}
	return strings.Join(blocks, "\n\n")
}
