package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure OpenAIEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OpenAIEmbedding)(nil)

// OpenAIEmbedding implements EmbeddingService against an OpenAI-compatible /embeddings endpoint
type OpenAIEmbedding struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	// requestDims is sent as the "dimensions" parameter when the caller asked for a reduced size
	requestDims int
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
}

// Model dimensions for OpenAI embedding models
var openAIModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// NewOpenAIEmbedding creates a new OpenAI embedding service.
// dimensions > 0 requests shortened vectors from models that support it.
func NewOpenAIEmbedding(apiKey, model, baseURL string, dimensions int, client *http.Client) (*OpenAIEmbedding, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", domain.ErrNotConfigured)
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	e := &OpenAIEmbedding{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  defaultHTTPClient(client),
		breaker: newBreaker("openai-embedding"),
	}
	if dimensions > 0 {
		e.dimensions = dimensions
		e.requestDims = dimensions
	} else if d, ok := openAIModelDimensions[model]; ok {
		e.dimensions = d
	} else {
		e.dimensions = 1536
	}
	return e, nil
}

type embeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
	Dimensions     int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Embed generates embeddings for multiple texts, returned in input order
func (e *OpenAIEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := execute(e.breaker, func() (*embeddingResponse, error) {
		return e.doRequest(ctx, embeddingRequest{
			Input:          texts,
			Model:          e.model,
			EncodingFormat: "float",
			Dimensions:     e.requestDims,
		})
	})
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return nil, fmt.Errorf("OpenAI API returned out-of-range index %d", d.Index)
		}
		if len(d.Embedding) != e.dimensions {
			return nil, fmt.Errorf("%w: %s returned %d dimensions, expected %d",
				domain.ErrEmbeddingMismatch, e.model, len(d.Embedding), e.dimensions)
		}
		embeddings[d.Index] = d.Embedding
	}
	for i, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("OpenAI API returned no embedding for input %d", i)
		}
	}

	return embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *OpenAIEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size
func (e *OpenAIEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *OpenAIEmbedding) Model() string {
	return e.model
}

// HealthCheck makes a small embedding request to verify connectivity
func (e *OpenAIEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases idle connections
func (e *OpenAIEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *OpenAIEmbedding) doRequest(ctx context.Context, reqBody embeddingRequest) (*embeddingResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	respBody, httpErr := do(e.client, req)

	var embResp embeddingResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &embResp); err != nil && httpErr == nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	if embResp.Error != nil {
		msg := fmt.Sprintf("OpenAI API error: %s (type: %s, code: %s)", embResp.Error.Message, embResp.Error.Type, embResp.Error.Code)
		if httpErr != nil {
			return nil, fmt.Errorf("%s: %w", msg, httpErr)
		}
		return nil, fmt.Errorf("%s", msg)
	}
	if httpErr != nil {
		return nil, fmt.Errorf("OpenAI API: %w", httpErr)
	}

	return &embResp, nil
}
