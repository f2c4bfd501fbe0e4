package sample

import (
	"math"
	"math/rand"

	"github.com/quill-ml/quill/internal/prob"
)

// ApplyTemperature returns a copy of d reshaped by temperature t and
// renormalized: q_i = (p_i + eps)^(1/t).
//
// Temperatures below 1 sharpen the distribution toward its mode, above 1
// flatten it, and t = 1 is the identity up to renormalization.
func ApplyTemperature(d prob.Distribution, t float64) (prob.Distribution, error) {
	if t <= 0 {
		return nil, &ConfigError{Option: "temperature", Value: t, Reason: "must be > 0"}
	}
	if err := prob.Validate(d); err != nil {
		return nil, err
	}

	q := make(prob.Distribution, len(d))
	inv := 1 / t
	for i, p := range d {
		q[i] = math.Pow(p+prob.Epsilon, inv)
	}

	if err := prob.Renormalize(q); err != nil {
		return nil, err
	}
	return q, nil
}

// Temperature reshapes d by temperature t and draws from the result.
func Temperature(d prob.Distribution, t float64, rng *rand.Rand) (int, error) {
	q, err := ApplyTemperature(d, t)
	if err != nil {
		return 0, err
	}
	return prob.Draw(q, rng)
}
