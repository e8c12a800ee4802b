package ai

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure HashingEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*HashingEmbedding)(nil)

// HashingEmbedding is an offline embedder using signed feature hashing of
// lowercased word tokens and adjacent-word pairs. Vectors are L2-normalised,
// so texts sharing vocabulary score high under cosine similarity.
type HashingEmbedding struct {
	model      string
	dimensions int
}

// NewHashingEmbedding creates a hashing embedder; non-positive dimensions use the default.
func NewHashingEmbedding(model string, dimensions int) *HashingEmbedding {
	if model == "" {
		model = domain.DefaultLocalEmbeddingModel
	}
	if dimensions <= 0 {
		dimensions = domain.DefaultEmbeddingDimensions
	}
	return &HashingEmbedding{model: model, dimensions: dimensions}
}

// Embed generates one vector per text
func (e *HashingEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

// EmbedQuery generates the vector for a query
func (e *HashingEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.vector(query), nil
}

func (e *HashingEmbedding) vector(text string) []float32 {
	vec := make([]float32, e.dimensions)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, tok := range tokens {
		e.add(vec, tok, 1)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// add hashes a feature into a bucket; the top hash bit picks the sign
func (e *HashingEmbedding) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()
	bucket := sum % uint64(e.dimensions)
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

// Dimensions returns the vector size
func (e *HashingEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name recorded in the index
func (e *HashingEmbedding) Model() string {
	return e.model
}

// HealthCheck always succeeds
func (e *HashingEmbedding) HealthCheck(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (e *HashingEmbedding) Close() error {
	return nil
}
