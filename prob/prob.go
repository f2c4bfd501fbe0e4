// Package prob provides probability distribution utilities for Quill.
//
// This package wraps the internal prob implementation and provides
// a clean public API for working with categorical distributions.
//
// Components:
//   - Distribution: A categorical distribution over indices
//   - Renormalize / Normalized: Scale a distribution back to unit mass
//   - Draw: One categorical draw from an explicit RNG
//   - Entropy: Shannon entropy in nats
//
// Example usage:
//
//	import (
//	    "math/rand"
//
//	    "github.com/quill-ml/quill/prob"
//	)
//
//	d := prob.Distribution{0.7, 0.2, 0.1}
//	rng := rand.New(rand.NewSource(42))
//	idx, err := prob.Draw(d, rng)
package prob

import (
	"math/rand"

	"github.com/quill-ml/quill/internal/prob"
)

// Epsilon guards logarithms and divisions against zero probabilities.
const Epsilon = prob.Epsilon

// ErrInvalidDistribution reports an empty distribution, a negative entry
// or a distribution without positive mass.
var ErrInvalidDistribution = prob.ErrInvalidDistribution

// Distribution is a categorical distribution over indices 0..len-1.
// Entries are expected to be non-negative; most operations renormalize,
// so the total mass does not have to be exactly 1.
type Distribution = prob.Distribution

// Validate checks that d is structurally usable: non-empty with no
// negative entries.
func Validate(d Distribution) error {
	return prob.Validate(d)
}

// Renormalize scales d in place so its entries sum to 1.
func Renormalize(d Distribution) error {
	return prob.Renormalize(d)
}

// Normalized returns a renormalized copy of d, leaving d untouched.
func Normalized(d Distribution) (Distribution, error) {
	return prob.Normalized(d)
}

// Clone returns an independent copy of d.
func Clone(d Distribution) Distribution {
	return prob.Clone(d)
}

// Draw samples one index from d using rng.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	idx, err := prob.Draw(prob.Distribution{0.5, 0.3, 0.2}, rng)
func Draw(d Distribution, rng *rand.Rand) (int, error) {
	return prob.Draw(d, rng)
}

// Entropy returns the Shannon entropy of d in nats. Zero entries
// contribute nothing.
func Entropy(d Distribution) float64 {
	return prob.Entropy(d)
}

// Uniform returns the uniform distribution over n indices.
func Uniform(n int) Distribution {
	return prob.Uniform(n)
}
