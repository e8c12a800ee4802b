package mocks

import (
	"context"
	"hash/fnv"
	"sync"
)

// StaticEmbeddingService is a deterministic EmbeddingService for testing.
// Texts registered with Set get that exact vector; anything else gets a
// pseudo-random vector derived from the text hash.
type StaticEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	model      string
	vectors    map[string][]float32
	failNext   error
	embedCalls int
	queryCalls int
}

// NewStaticEmbeddingService creates a StaticEmbeddingService with the given dimension
func NewStaticEmbeddingService(dimensions int) *StaticEmbeddingService {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &StaticEmbeddingService{
		dimensions: dimensions,
		model:      "static-embedding-model",
		vectors:    make(map[string][]float32),
	}
}

func (m *StaticEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vectorFor(text)
	}
	return result, nil
}

func (m *StaticEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	return m.vectorFor(query), nil
}

func (m *StaticEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *StaticEmbeddingService) Model() string {
	return m.model
}

func (m *StaticEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *StaticEmbeddingService) Close() error {
	return nil
}

func (m *StaticEmbeddingService) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *StaticEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000) / 1000.0
	}
	return embedding
}

// Helper methods for testing

// Set pins the vector returned for text
func (m *StaticEmbeddingService) Set(text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vec
}

// SetModel overrides the reported model name
func (m *StaticEmbeddingService) SetModel(model string) {
	m.model = model
}

// SetFailNext makes the next Embed or EmbedQuery call return err
func (m *StaticEmbeddingService) SetFailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// EmbedCalls returns the number of batch calls made
func (m *StaticEmbeddingService) EmbedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// QueryCalls returns the number of query calls made
func (m *StaticEmbeddingService) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}
