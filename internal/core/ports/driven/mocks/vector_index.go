package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/vector"
)

// MemoryIndex is an in-memory VectorIndex for testing.
// It follows the same append, skip-duplicate and tie-break rules as the
// persistent indexes.
type MemoryIndex struct {
	mu         sync.RWMutex
	entries    []*domain.IndexEntry
	ids        map[string]struct{}
	model      string
	dimensions int
	seq        int64
	closed     bool

	// Custom behavior hooks (optional)
	SearchErr error
	AddErr    error
}

// NewMemoryIndex creates an empty MemoryIndex
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{ids: make(map[string]struct{})}
}

func (m *MemoryIndex) Add(ctx context.Context, entries []*domain.IndexEntry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, domain.ErrIndexUnavailable
	}
	if m.AddErr != nil {
		return 0, m.AddErr
	}

	added := 0
	for _, e := range entries {
		if len(e.Embedding) == 0 {
			return added, fmt.Errorf("%w: entry %s has no embedding", domain.ErrInvalidInput, e.ID)
		}
		if _, dup := m.ids[e.ID]; dup {
			continue
		}
		m.seq++
		e.Seq = m.seq
		m.ids[e.ID] = struct{}{}
		m.entries = append(m.entries, e)
		added++
	}
	return added, nil
}

func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*domain.RankedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, domain.ErrIndexUnavailable
	}
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return vector.TopK(query, m.entries, k), nil
}

func (m *MemoryIndex) EnsureSpace(ctx context.Context, model string, dimensions int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model == "" {
		m.model, m.dimensions = model, dimensions
		return nil
	}
	if m.model != model || m.dimensions != dimensions {
		return fmt.Errorf("%w: index built with %s/%d, embedder is %s/%d",
			domain.ErrEmbeddingMismatch, m.model, m.dimensions, model, dimensions)
	}
	return nil
}

func (m *MemoryIndex) Info(ctx context.Context) (*domain.IndexInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, domain.ErrIndexUnavailable
	}
	return &domain.IndexInfo{Model: m.model, Dimensions: m.dimensions, Entries: len(m.entries)}, nil
}

func (m *MemoryIndex) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.ids = make(map[string]struct{})
	m.model, m.dimensions = "", 0
	return nil
}

func (m *MemoryIndex) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return domain.ErrIndexUnavailable
	}
	return nil
}

func (m *MemoryIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Helper methods for testing

// Entries returns a snapshot of stored entries in insertion order
func (m *MemoryIndex) Entries() []*domain.IndexEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.IndexEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
