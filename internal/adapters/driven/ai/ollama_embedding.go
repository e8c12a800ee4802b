package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure OllamaEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OllamaEmbedding)(nil)

// OllamaEmbedding calls a local Ollama server's /api/embeddings endpoint, one text per request.
type OllamaEmbedding struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewOllamaEmbedding creates an Ollama embedding service
func NewOllamaEmbedding(baseURL, model string, dimensions int, client *http.Client) (*OllamaEmbedding, error) {
	if baseURL == "" {
		baseURL = domain.DefaultOllamaBaseURL
	}
	if model == "" {
		model = domain.DefaultOllamaEmbeddingModel
	}
	if dimensions <= 0 {
		dimensions = domain.DefaultEmbeddingDimensions
	}
	return &OllamaEmbedding{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimensions: dimensions,
		client:     defaultHTTPClient(client),
		breaker:    newBreaker("ollama-embedding"),
	}, nil
}

type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed generates embeddings sequentially in input order
func (e *OllamaEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := e.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

// EmbedQuery generates an embedding for one text
func (e *OllamaEmbedding) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return execute(e.breaker, func() ([]float32, error) {
		return e.embed(ctx, text)
	})
}

func (e *OllamaEmbedding) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model":  e.model,
		"prompt": text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, httpErr := do(e.client, req)
	var resp ollamaEmbeddingResponse
	if len(respBody) > 0 {
		_ = json.Unmarshal(respBody, &resp)
	}
	if httpErr != nil {
		if resp.Error != "" {
			return nil, fmt.Errorf("ollama embedding: %s: %w", resp.Error, httpErr)
		}
		return nil, fmt.Errorf("ollama embedding: %w", httpErr)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embedding: empty vector from %s", e.model)
	}
	if len(resp.Embedding) != e.dimensions {
		return nil, fmt.Errorf("%w: %s returned %d dimensions, expected %d",
			domain.ErrEmbeddingMismatch, e.model, len(resp.Embedding), e.dimensions)
	}
	return resp.Embedding, nil
}

// Dimensions returns the embedding dimension size
func (e *OllamaEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *OllamaEmbedding) Model() string {
	return e.model
}

// HealthCheck embeds a probe string
func (e *OllamaEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases idle connections
func (e *OllamaEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
