package sample

import (
	"gonum.org/v1/gonum/floats"

	"github.com/quill-ml/quill/internal/prob"
)

// Greedy returns the index of the most probable entry, ties broken by
// first occurrence in index order. Purely deterministic; no RNG is
// consumed.
func Greedy(d prob.Distribution) (int, error) {
	if err := prob.Validate(d); err != nil {
		return 0, err
	}
	return floats.MaxIdx(d), nil
}
