package sample

import (
	"math/rand"

	"github.com/quill-ml/quill/internal/prob"
)

// TopP draws from the nucleus of d: the smallest probability-sorted prefix
// whose cumulative mass reaches p. The crossing index is included, so the
// nucleus never shrinks below one.
//
// The nucleus adapts to the distribution's confidence. A single dominant
// index yields a nucleus of size 1 even for large p; a flat distribution
// yields a large nucleus even for small p. p = 1 degenerates to an
// unrestricted draw over the full distribution.
func TopP(d prob.Distribution, p float64, rng *rand.Rand) (int, error) {
	if p <= 0 || p > 1 {
		return 0, &ConfigError{Option: "top_p", Value: p, Reason: "must be in (0, 1]"}
	}
	if err := prob.Validate(d); err != nil {
		return 0, err
	}

	order := sortedIndices(d)

	cut := len(order)
	cum := 0.0
	for i, j := range order {
		cum += d[j]
		if cum >= p {
			cut = i + 1
			break
		}
	}

	return drawAmong(d, order[:cut], rng)
}
