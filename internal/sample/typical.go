package sample

import (
	"math"
	"math/rand"
	"sort"

	"github.com/quill-ml/quill/internal/prob"
)

// Typical draws from the indices whose surprise is closest to the
// distribution's entropy, keeping the smallest such set with cumulative
// mass tau.
//
// Surprise is -ln(p_i + eps). Indices are ordered by |surprise - H|
// ascending, so tokens that are neither too likely nor too unlikely come
// first; mass accumulates in that order until it reaches tau.
func Typical(d prob.Distribution, tau float64, rng *rand.Rand) (int, error) {
	if tau <= 0 || tau > 1 {
		return 0, &ConfigError{Option: "tau", Value: tau, Reason: "must be in (0, 1]"}
	}
	if err := prob.Validate(d); err != nil {
		return 0, err
	}

	h := prob.Entropy(d)
	deviation := make([]float64, len(d))
	for i, p := range d {
		deviation[i] = math.Abs(-math.Log(p+prob.Epsilon) - h)
	}

	order := make([]int, len(d))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return deviation[order[a]] < deviation[order[b]]
	})

	cut := len(order)
	cum := 0.0
	for i, j := range order {
		cum += d[j]
		if cum >= tau {
			cut = i + 1
			break
		}
	}

	return drawAmong(d, order[:cut], rng)
}
