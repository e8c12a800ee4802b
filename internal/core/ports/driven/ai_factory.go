package driven

import (
	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// AIServiceFactory creates AI services based on configuration
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings
	// Returns nil, nil if settings are not configured
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateAnswerGenerator creates an answer generator from settings
	// Returns nil, nil if settings are not configured
	CreateAnswerGenerator(settings *domain.LLMSettings) (AnswerGenerator, error)
}
