// Package prob provides probability distribution utilities for token
// selection.
//
// A Distribution is an ordered set of non-negative weights over vocabulary
// indices, nominally summing to 1. The helpers here validate, renormalize,
// and draw from distributions; every sampling strategy and search engine in
// this module builds on them.
package prob

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon is the floor added to probabilities before exponentiation or
// logarithm so that zero entries stay finite.
const Epsilon = 1e-10

// ErrInvalidDistribution reports a structurally invalid distribution:
// empty, a negative entry, or non-positive total mass.
var ErrInvalidDistribution = errors.New("invalid probability distribution")

// Distribution is a probability distribution over indices 0..N-1.
//
// Entries may be zero but never negative. Distributions are ephemeral:
// produced per decoding step, consumed immediately, not retained.
type Distribution []float64

// Validate checks structural validity: non-empty with no negative entries.
func Validate(d Distribution) error {
	if len(d) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidDistribution)
	}
	for i, p := range d {
		if p < 0 {
			return fmt.Errorf("%w: negative entry %g at index %d", ErrInvalidDistribution, p, i)
		}
	}
	return nil
}

// Renormalize scales d in place so its entries sum to 1.
//
// Fails if the total mass is not positive, e.g. when every entry has been
// filtered to zero; callers must handle that rather than divide by zero.
func Renormalize(d Distribution) error {
	sum := floats.Sum(d)
	if sum <= 0 {
		return fmt.Errorf("%w: total mass %g", ErrInvalidDistribution, sum)
	}
	floats.Scale(1/sum, d)
	return nil
}

// Normalized returns a renormalized copy of d, leaving d untouched.
func Normalized(d Distribution) (Distribution, error) {
	out := Clone(d)
	if err := Renormalize(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clone returns an independent copy of d.
func Clone(d Distribution) Distribution {
	return append(Distribution{}, d...)
}

// Draw samples an index from d using the supplied RNG.
//
// It draws r uniformly in [0,1) and scans entries in index order, returning
// the first index whose running cumulative sum reaches r. When floating-point
// drift leaves the cumulative sum short of r, the last index is returned so
// that every draw lands inside the distribution.
func Draw(d Distribution, rng *rand.Rand) (int, error) {
	if err := Validate(d); err != nil {
		return 0, err
	}

	r := rng.Float64()
	cum := 0.0
	for i, p := range d {
		cum += p
		if cum >= r {
			return i, nil
		}
	}

	// Rounding left the cumulative sum below r.
	return len(d) - 1, nil
}

// Entropy returns H(d) = -sum(p*ln(p)) in nats. Zero entries contribute
// zero.
func Entropy(d Distribution) float64 {
	return stat.Entropy(d)
}

// Uniform returns the uniform distribution over n indices.
func Uniform(n int) Distribution {
	d := make(Distribution, n)
	for i := range d {
		d[i] = 1 / float64(n)
	}
	return d
}
