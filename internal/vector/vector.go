// Package vector holds the similarity math shared by the index backends and
// the retrieval engine.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Zero-magnitude or mismatched vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2))
}

// TopK scores entries against query and returns the k best.
// Entries must be in insertion order; equal scores keep that order.
func TopK(query []float32, entries []*domain.IndexEntry, k int) []*domain.RankedEntry {
	ranked := make([]*domain.RankedEntry, 0, len(entries))
	for _, e := range entries {
		s := Cosine(query, e.Embedding)
		if math.IsNaN(s) {
			continue
		}
		ranked = append(ranked, &domain.RankedEntry{Entry: e, Score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if k >= 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// Encode packs a vector as little-endian IEEE 754 float32 values.
func Encode(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// Decode unpacks a blob produced by Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
