package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// countingEmbedding wraps HashingEmbedding and counts calls
type countingEmbedding struct {
	*HashingEmbedding
	mu      sync.Mutex
	queries int
	batches int
}

func (c *countingEmbedding) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	c.mu.Lock()
	c.queries++
	c.mu.Unlock()
	return c.HashingEmbedding.EmbedQuery(ctx, q)
}

func (c *countingEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.batches++
	c.mu.Unlock()
	return c.HashingEmbedding.Embed(ctx, texts)
}

// mapCache is an in-memory EmbeddingCache
type mapCache struct {
	entries map[string][]float32
	failGet bool
}

func (m *mapCache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	if m.failGet {
		return nil, false, errors.New("cache down")
	}
	v, ok := m.entries[model+"|"+text]
	return v, ok, nil
}

func (m *mapCache) Set(ctx context.Context, model, text string, vec []float32, ttl time.Duration) error {
	m.entries[model+"|"+text] = vec
	return nil
}

func TestCachedEmbedding(t *testing.T) {
	inner := &countingEmbedding{HashingEmbedding: NewHashingEmbedding("", 8)}
	cache := &mapCache{entries: map[string][]float32{}}
	svc := NewCachedEmbedding(inner, cache, time.Minute, nil)
	ctx := context.Background()

	first, err := svc.EmbedQuery(ctx, "vaccine")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := svc.EmbedQuery(ctx, "vaccine")
	if inner.queries != 1 {
		t.Errorf("expected one upstream call, got %d", inner.queries)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("cached vector differs")
		}
	}

	// Batches are not cached
	_, _ = svc.Embed(ctx, []string{"vaccine"})
	_, _ = svc.Embed(ctx, []string{"vaccine"})
	if inner.batches != 2 {
		t.Errorf("expected batches to bypass cache, got %d calls", inner.batches)
	}

	if svc.Model() != inner.Model() || svc.Dimensions() != 8 {
		t.Error("decorator must expose the inner embedding space")
	}
}

func TestCachedEmbedding_CacheFailureFallsThrough(t *testing.T) {
	inner := &countingEmbedding{HashingEmbedding: NewHashingEmbedding("", 8)}
	svc := NewCachedEmbedding(inner, &mapCache{entries: map[string][]float32{}, failGet: true}, 0, nil)

	if _, err := svc.EmbedQuery(context.Background(), "q"); err != nil {
		t.Fatalf("cache failure must not fail the query: %v", err)
	}
	if inner.queries != 1 {
		t.Errorf("expected upstream call, got %d", inner.queries)
	}
}

func TestCachedEmbedding_IgnoresWrongSizedEntries(t *testing.T) {
	inner := &countingEmbedding{HashingEmbedding: NewHashingEmbedding("", 8)}
	cache := &mapCache{entries: map[string][]float32{inner.Model() + "|q": {1, 2}}}
	svc := NewCachedEmbedding(inner, cache, 0, nil)

	v, _ := svc.EmbedQuery(context.Background(), "q")
	if len(v) != 8 || inner.queries != 1 {
		t.Errorf("expected stale entry to be recomputed, got len %d calls %d", len(v), inner.queries)
	}
}

func TestRateLimitedEmbedding(t *testing.T) {
	inner := &countingEmbedding{HashingEmbedding: NewHashingEmbedding("", 8)}
	svc := NewRateLimitedEmbedding(inner, 1000)
	ctx := context.Background()

	if _, err := svc.Embed(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.EmbedQuery(ctx, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batches != 1 || inner.queries != 1 {
		t.Errorf("unexpected call counts %d/%d", inner.batches, inner.queries)
	}
}

func TestRateLimitedEmbedding_HonoursContext(t *testing.T) {
	svc := NewRateLimitedEmbedding(NewHashingEmbedding("", 8), 0.001)
	ctx := context.Background()

	// First call consumes the single burst token
	if _, err := svc.EmbedQuery(ctx, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if _, err := svc.EmbedQuery(ctx, "b"); err == nil {
		t.Error("expected wait to fail when the deadline is shorter than the refill interval")
	}
}
