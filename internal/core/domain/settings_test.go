package domain

import (
	"errors"
	"testing"
)

func TestAIProviderConstants(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected string
	}{
		{AIProviderLocal, "local"},
		{AIProviderOpenAI, "openai"},
		{AIProviderOllama, "ollama"},
		{AIProviderGroq, "groq"},
	}

	for _, tt := range tests {
		if string(tt.provider) != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, tt.provider)
		}
	}
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"empty provider", EmbeddingSettings{}, false},
		{"local needs no key", EmbeddingSettings{Provider: AIProviderLocal}, true},
		{"ollama needs no key", EmbeddingSettings{Provider: AIProviderOllama, Model: "all-minilm"}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI, Model: "text-embedding-3-small"}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.IsConfigured(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"empty provider", LLMSettings{}, false},
		{"groq without key", LLMSettings{Provider: AIProviderGroq, Model: DefaultLLMModel}, false},
		{"groq with key", LLMSettings{Provider: AIProviderGroq, APIKey: "gsk-test"}, true},
		{"ollama", LLMSettings{Provider: AIProviderOllama, Model: "llama3"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.IsConfigured(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderLocal, false},
		{AIProviderOllama, false},
		{AIProviderOpenAI, true},
		{AIProviderGroq, true},
	}

	for _, tt := range tests {
		if got := tt.provider.RequiresAPIKey(); got != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.provider, tt.expected, got)
		}
	}
}

func TestParseAIProvider(t *testing.T) {
	for _, name := range []string{"local", "openai", "ollama", "groq"} {
		p, err := ParseAIProvider(name)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if string(p) != name {
			t.Errorf("expected %s, got %s", name, p)
		}
	}

	if _, err := ParseAIProvider("anthropic"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown provider, got %v", err)
	}
	if _, err := ParseAIProvider(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty provider, got %v", err)
	}
}
