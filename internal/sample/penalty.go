package sample

import (
	"github.com/quill-ml/quill/internal/prob"
)

// ApplyRepetitionPenalty returns a renormalized copy of d with the
// probability of every distinct index in history divided by penalty.
//
// The penalty applies once per distinct index no matter how often it
// recurs in history; indices outside the distribution are ignored. It is a
// pre-processing transform composable with any strategy: penalize, then
// filter, then draw.
func ApplyRepetitionPenalty(d prob.Distribution, history []int, penalty float64) (prob.Distribution, error) {
	if penalty < 1 {
		return nil, &ConfigError{Option: "repetition_penalty", Value: penalty, Reason: "must be >= 1"}
	}
	if err := prob.Validate(d); err != nil {
		return nil, err
	}

	out := prob.Clone(d)

	// Penalize each distinct index once.
	seen := make(map[int]bool)
	for _, idx := range history {
		seen[idx] = true
	}
	for idx := range seen {
		if idx >= 0 && idx < len(out) {
			out[idx] /= penalty
		}
	}

	if err := prob.Renormalize(out); err != nil {
		return nil, err
	}
	return out, nil
}
