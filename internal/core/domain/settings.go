package domain

import "fmt"

// AIProvider identifies the embedding or text-generation backend
type AIProvider string

const (
	AIProviderLocal  AIProvider = "local" // Deterministic feature-hashing embedder, no network
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
	AIProviderGroq   AIProvider = "groq"
)

// Model defaults
const (
	DefaultLocalEmbeddingModel  = "feature-hashing"
	DefaultOllamaEmbeddingModel = "all-minilm" // all-MiniLM-L6-v2
	DefaultEmbeddingDimensions  = 384
	DefaultLLMModel             = "llama-3.3-70b-versatile"
	DefaultGroqBaseURL          = "https://api.groq.com/openai/v1"
	DefaultOllamaBaseURL        = "http://localhost:11434"
)

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider   AIProvider `json:"provider"`
	Model      string     `json:"model"`
	APIKey     string     `json:"-"` // Never serialize to JSON
	BaseURL    string     `json:"base_url,omitempty"`
	Dimensions int        `json:"dimensions,omitempty"` // Only honoured by the local provider
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the answer generator
type LLMSettings struct {
	Provider    AIProvider `json:"provider"`
	Model       string     `json:"model"`
	APIKey      string     `json:"-"` // Never serialize to JSON
	BaseURL     string     `json:"base_url,omitempty"`
	Temperature float64    `json:"temperature"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOpenAI, AIProviderOllama, AIProviderGroq:
		return true
	default:
		return false
	}
}

// ParseAIProvider validates a provider name
func ParseAIProvider(name string) (AIProvider, error) {
	p := AIProvider(name)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidInput, name)
	}
	return p, nil
}
