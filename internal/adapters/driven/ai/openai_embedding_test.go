package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

func embeddingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestNewOpenAIEmbedding_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedding("", "text-embedding-3-small", "", 0, nil)
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNewOpenAIEmbedding_Defaults(t *testing.T) {
	emb, err := NewOpenAIEmbedding("sk-test", "", "", 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.model != "text-embedding-3-small" {
		t.Errorf("expected default model text-embedding-3-small, got %s", emb.model)
	}
	if emb.baseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %s", emb.baseURL)
	}
	if err := emb.Close(); err != nil {
		t.Errorf("expected no error from Close, got %v", err)
	}
}

func TestOpenAIEmbedding_Dimensions(t *testing.T) {
	testCases := []struct {
		model      string
		requested  int
		dimensions int
	}{
		{"text-embedding-3-small", 0, 1536},
		{"text-embedding-3-large", 0, 3072},
		{"text-embedding-ada-002", 0, 1536},
		{"unknown-model", 0, 1536},
		{"text-embedding-3-small", 384, 384},
	}

	for _, tc := range testCases {
		t.Run(tc.model, func(t *testing.T) {
			svc, err := NewOpenAIEmbedding("sk-test", tc.model, "", tc.requested, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc.Dimensions() != tc.dimensions {
				t.Errorf("expected dimensions %d, got %d", tc.dimensions, svc.Dimensions())
			}
			if svc.Model() != tc.model {
				t.Errorf("expected model %s, got %s", tc.model, svc.Model())
			}
		})
	}
}

func TestOpenAIEmbedding_Embed_EmptyInput(t *testing.T) {
	svc, _ := NewOpenAIEmbedding("sk-test", "", "", 0, nil)

	result, err := svc.Embed(context.Background(), []string{})
	if err != nil {
		t.Errorf("unexpected error for empty input: %v", err)
	}
	if result != nil {
		t.Error("expected nil result for empty input")
	}
}

func TestOpenAIEmbedding_Embed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/embeddings" {
			t.Errorf("expected /embeddings, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("expected Authorization header")
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Dimensions != 3 {
			t.Errorf("expected dimensions parameter 3, got %d", req.Dimensions)
		}
		if len(req.Input) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Input))
		}

		// Out of order on purpose
		_, _ = w.Write([]byte(`{"data":[
			{"index":1,"embedding":[0.4,0.5,0.6]},
			{"index":0,"embedding":[0.1,0.2,0.3]}
		],"model":"text-embedding-3-small"}`))
	}))
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(result))
	}
	if result[0][0] != 0.1 || result[1][0] != 0.4 {
		t.Errorf("embeddings not reassembled in input order: %v", result)
	}
}

func TestOpenAIEmbedding_Embed_DimensionMismatch(t *testing.T) {
	server, _ := embeddingServer(t, http.StatusOK, `{"data":[{"index":0,"embedding":[0.1,0.2]}]}`)

	svc, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL, 3, nil)
	_, err := svc.EmbedQuery(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingMismatch) {
		t.Errorf("expected ErrEmbeddingMismatch, got %v", err)
	}
}

func TestOpenAIEmbedding_Embed_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"Invalid API key","type":"invalid_request_error","code":"invalid_api_key"}}`, false},
		{"invalid json", http.StatusOK, `invalid json`, false},
		{"server error", http.StatusInternalServerError, `{"error":"internal error"}`, true},
		{"rate limited", http.StatusTooManyRequests, ``, true},
		{"empty result", http.StatusOK, `{"data":[]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := embeddingServer(t, tt.status, tt.body)
			svc, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL, 3, nil)

			_, err := svc.Embed(context.Background(), []string{"test"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, domain.ErrServiceUnavailable); got != tt.unavailable {
				t.Errorf("ErrServiceUnavailable = %v, want %v (%v)", got, tt.unavailable, err)
			}
		})
	}
}

func TestOpenAIEmbedding_Embed_NetworkError(t *testing.T) {
	svc, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", "http://localhost:99999", 0, nil)

	_, err := svc.Embed(context.Background(), []string{"test"})
	if !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable for network error, got %v", err)
	}
}

func TestOpenAIEmbedding_CircuitBreaker(t *testing.T) {
	server, hits := embeddingServer(t, http.StatusBadGateway, ``)
	svc, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL, 3, nil)

	for i := 0; i < 8; i++ {
		if _, err := svc.EmbedQuery(context.Background(), "q"); !errors.Is(err, domain.ErrServiceUnavailable) {
			t.Fatalf("call %d: expected ErrServiceUnavailable, got %v", i, err)
		}
	}
	if n := atomic.LoadInt32(hits); n != 5 {
		t.Errorf("expected breaker to open after 5 upstream failures, server saw %d", n)
	}
}

func TestOpenAIEmbedding_ClientErrorsDoNotTrip(t *testing.T) {
	server, hits := embeddingServer(t, http.StatusBadRequest, `{"error":{"message":"bad input"}}`)
	svc, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL, 3, nil)

	for i := 0; i < 8; i++ {
		_, _ = svc.EmbedQuery(context.Background(), "q")
	}
	if n := atomic.LoadInt32(hits); n != 8 {
		t.Errorf("expected every request to reach the server, got %d", n)
	}
}

func TestOpenAIEmbedding_HealthCheck(t *testing.T) {
	server, _ := embeddingServer(t, http.StatusOK, `{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`)
	svc, _ := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL, 3, nil)

	if err := svc.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected no error from health check, got %v", err)
	}
}
