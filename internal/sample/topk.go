package sample

import (
	"math/rand"
	"sort"

	"github.com/quill-ml/quill/internal/prob"
)

// TopK draws from the k most probable indices of d.
//
// Indices are ordered by probability descending with ties kept in index
// order; the first min(k, len(d)) are renormalized and drawn from, and the
// draw maps back to the original index. k = 1 is equivalent to Greedy.
func TopK(d prob.Distribution, k int, rng *rand.Rand) (int, error) {
	if k <= 0 {
		return 0, &ConfigError{Option: "top_k", Value: k, Reason: "must be > 0"}
	}
	if err := prob.Validate(d); err != nil {
		return 0, err
	}

	order := sortedIndices(d)
	return drawAmong(d, order[:min(k, len(d))], rng)
}

// sortedIndices returns the indices of d ordered by probability
// descending. The sort is stable so ties keep their index order.
func sortedIndices(d prob.Distribution) []int {
	order := make([]int, len(d))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return d[order[a]] > d[order[b]]
	})
	return order
}

// drawAmong renormalizes the entries of d selected by keep, draws from
// them, and maps the draw back to the original index.
func drawAmong(d prob.Distribution, keep []int, rng *rand.Rand) (int, error) {
	sub := make(prob.Distribution, len(keep))
	for i, j := range keep {
		sub[i] = d[j]
	}

	if err := prob.Renormalize(sub); err != nil {
		return 0, err
	}
	idx, err := prob.Draw(sub, rng)
	if err != nil {
		return 0, err
	}
	return keep[idx], nil
}
