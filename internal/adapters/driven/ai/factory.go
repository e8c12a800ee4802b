package ai

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration
type Factory struct {
	client *http.Client
}

// NewFactory creates a new AI service factory. A nil client gets a 60s-timeout default.
func NewFactory(client *http.Client) *Factory {
	return &Factory{client: client}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return NewHashingEmbedding(settings.Model, settings.Dimensions), nil
	case domain.AIProviderOpenAI:
		svc, err := NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL, settings.Dimensions, f.client)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderOllama:
		svc, err := NewOllamaEmbedding(settings.BaseURL, settings.Model, settings.Dimensions, f.client)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: %s does not provide embeddings", domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateAnswerGenerator creates an answer generator from settings
func (f *Factory) CreateAnswerGenerator(settings *domain.LLMSettings) (driven.AnswerGenerator, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGroq, domain.AIProviderOpenAI, domain.AIProviderOllama:
		gen, err := NewChatGenerator(settings, f.client)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("%w: %s does not provide text generation", domain.ErrInvalidInput, settings.Provider)
	}
}
