package ai

import (
	"errors"
	"testing"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

func TestFactory_CreateEmbeddingService(t *testing.T) {
	f := NewFactory(nil)

	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantType string
		wantErr  error
	}{
		{"nil settings", nil, true, "", nil},
		{"not configured", &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, true, "", nil},
		{"local", &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Dimensions: 32}, false, "local", nil},
		{"openai", &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"}, false, "openai", nil},
		{"ollama", &domain.EmbeddingSettings{Provider: domain.AIProviderOllama}, false, "ollama", nil},
		{"groq has no embeddings", &domain.EmbeddingSettings{Provider: domain.AIProviderGroq, APIKey: "gsk"}, true, "", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := f.CreateEmbeddingService(tt.settings)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if svc != nil {
					t.Errorf("expected nil service, got %T", svc)
				}
				return
			}

			var ok bool
			switch tt.wantType {
			case "local":
				_, ok = svc.(*HashingEmbedding)
			case "openai":
				_, ok = svc.(*OpenAIEmbedding)
			case "ollama":
				_, ok = svc.(*OllamaEmbedding)
			}
			if !ok {
				t.Errorf("expected %s service, got %T", tt.wantType, svc)
			}
		})
	}
}

func TestFactory_CreateAnswerGenerator(t *testing.T) {
	f := NewFactory(nil)

	gen, err := f.CreateAnswerGenerator(nil)
	if err != nil || gen != nil {
		t.Errorf("expected nil, nil for nil settings, got %v %v", gen, err)
	}

	gen, err = f.CreateAnswerGenerator(&domain.LLMSettings{Provider: domain.AIProviderGroq})
	if err != nil || gen != nil {
		t.Errorf("expected nil, nil without API key, got %v %v", gen, err)
	}

	gen, err = f.CreateAnswerGenerator(&domain.LLMSettings{Provider: domain.AIProviderGroq, APIKey: "gsk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gen.(*ChatGenerator); !ok {
		t.Errorf("expected ChatGenerator, got %T", gen)
	}

	_, err = f.CreateAnswerGenerator(&domain.LLMSettings{Provider: domain.AIProviderLocal})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for local generator, got %v", err)
	}
}

func TestFactory_ImplementsInterface(t *testing.T) {
	var _ driven.AIServiceFactory = NewFactory(nil)
}
