package services

import (
	"math"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/vector"
)

// mmrRerank selects up to k entries from pool by Maximal Marginal Relevance:
// each step picks the candidate maximising
//
//	lambda*sim(query, c) - (1-lambda)*max sim(c, selected)
//
// where the penalty is 0 while nothing is selected. pool must be ordered by
// descending relevance; equal MMR scores resolve to the earlier pool entry.
// Relevance is the candidate's Score as computed by the index; NaN counts as 0.
func mmrRerank(pool []*domain.RankedEntry, k int, lambda float64) []*domain.RankedEntry {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return []*domain.RankedEntry{}
	}

	remaining := make([]*domain.RankedEntry, len(pool))
	copy(remaining, pool)
	selected := make([]*domain.RankedEntry, 0, k)

	// maxSim[i] tracks the highest similarity of remaining[i] to any selected entry
	maxSim := make([]float64, len(remaining))

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, c := range remaining {
			relevance := c.Score
			if math.IsNaN(relevance) {
				relevance = 0
			}
			score := lambda*relevance - (1-lambda)*maxSim[i]
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		picked := remaining[bestIdx]
		selected = append(selected, picked)

		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		maxSim = append(maxSim[:bestIdx], maxSim[bestIdx+1:]...)

		for i, c := range remaining {
			if sim := vector.Cosine(c.Entry.Embedding, picked.Entry.Embedding); sim > maxSim[i] {
				maxSim[i] = sim
			}
		}
	}

	return selected
}
