// Package runtime holds the AI collaborators shared by the services of one process.
package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Capabilities reports which AI collaborators are wired
type Capabilities struct {
	EmbeddingModel      string `json:"embedding_model,omitempty"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
	AnswerModel         string `json:"answer_model,omitempty"`
	CanSearch           bool   `json:"can_search"`
	CanAnswer           bool   `json:"can_answer"`
}

// Services holds the embedding service and the optional answer generator.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	embeddingService driven.EmbeddingService
	answerGenerator  driven.AnswerGenerator
}

// NewServices creates a registry around the process-wide embedder
func NewServices(embedding driven.EmbeddingService) *Services {
	return &Services{embeddingService: embedding}
}

// EmbeddingService returns the embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// AnswerGenerator returns the answer generator (may be nil)
func (s *Services) AnswerGenerator() driven.AnswerGenerator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.answerGenerator
}

// SetAnswerGenerator replaces the answer generator, closing the old one
func (s *Services) SetAnswerGenerator(gen driven.AnswerGenerator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.answerGenerator != nil && s.answerGenerator != gen {
		_ = s.answerGenerator.Close()
	}
	s.answerGenerator = gen
}

// ValidateAndSetEmbedding health-checks svc before installing it.
// The previous embedder is closed on success.
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc != nil {
		if err := svc.HealthCheck(ctx); err != nil {
			_ = svc.Close()
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embeddingService != nil && s.embeddingService != svc {
		_ = s.embeddingService.Close()
	}
	s.embeddingService = svc
	return nil
}

// Capabilities returns a snapshot of what is wired
func (s *Services) Capabilities() Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Capabilities
	if s.embeddingService != nil {
		c.CanSearch = true
		c.EmbeddingModel = s.embeddingService.Model()
		c.EmbeddingDimensions = s.embeddingService.Dimensions()
	}
	if s.answerGenerator != nil {
		c.AnswerModel = s.answerGenerator.Model()
		c.CanAnswer = c.CanSearch
	}
	return c
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.answerGenerator != nil {
		_ = s.answerGenerator.Close()
		s.answerGenerator = nil
	}
	return nil
}
