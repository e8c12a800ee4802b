package ai

import (
	"context"
	"math"
	"testing"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/vector"
)

func TestHashingEmbedding_Defaults(t *testing.T) {
	e := NewHashingEmbedding("", 0)
	if e.Model() != domain.DefaultLocalEmbeddingModel {
		t.Errorf("unexpected model %s", e.Model())
	}
	if e.Dimensions() != domain.DefaultEmbeddingDimensions {
		t.Errorf("unexpected dimensions %d", e.Dimensions())
	}
}

func TestHashingEmbedding_Deterministic(t *testing.T) {
	e := NewHashingEmbedding("", 64)
	ctx := context.Background()

	a, _ := e.EmbedQuery(ctx, "Vaccine trials begin in Cuba")
	b, _ := e.Embed(ctx, []string{"Vaccine trials begin in Cuba"})
	if len(a) != 64 {
		t.Fatalf("expected 64 dimensions, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[0][i] {
			t.Fatal("query and document embeddings differ for the same text")
		}
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected unit vector, got norm %v", norm)
	}
}

func TestHashingEmbedding_Similarity(t *testing.T) {
	e := NewHashingEmbedding("", 384)
	ctx := context.Background()

	vecs, _ := e.Embed(ctx, []string{
		"Vaccine trials begin in Cuba",
		"Local bakery wins award",
	})
	q, _ := e.EmbedQuery(ctx, "vaccine trials Cuba")

	related := vector.Cosine(q, vecs[0])
	unrelated := vector.Cosine(q, vecs[1])
	if related <= unrelated {
		t.Errorf("expected related text to score higher: %v <= %v", related, unrelated)
	}
	if related < 0.5 {
		t.Errorf("expected strong similarity for shared terms, got %v", related)
	}
}

func TestHashingEmbedding_EmptyText(t *testing.T) {
	e := NewHashingEmbedding("", 16)
	v, err := e.EmbedQuery(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, x := range v {
		if x != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}
