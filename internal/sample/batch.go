package sample

import (
	"fmt"
	"math/rand"

	"github.com/quill-ml/quill/internal/parallel"
	"github.com/quill-ml/quill/internal/prob"
)

// Each draws one index from every distribution independently, sharing one
// config. histories may be nil or hold one history per distribution; a nil
// entry means no history for that draw.
//
// Draw i owns an RNG seeded with config.Seed + i when the seed is
// non-negative, so results are reproducible and do not depend on worker
// scheduling. A negative seed derives a random base once per call.
func Each(ds []prob.Distribution, histories [][]int, config Config, pcfg parallel.Config) ([]int, error) {
	if len(histories) > 0 && len(histories) != len(ds) {
		return nil, fmt.Errorf("histories length %d does not match distributions length %d", len(histories), len(ds))
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	base := config.Seed
	if base < 0 {
		base = rand.Int63() //nolint:gosec // User requested random seed
	}

	out := make([]int, len(ds))
	errs := make([]error, len(ds))

	parallel.For(len(ds), func(i int) {
		var history []int
		if len(histories) > 0 {
			history = histories[i]
		}
		rng := rand.New(rand.NewSource(base + int64(i))) //nolint:gosec // Deterministic per-draw stream
		out[i], errs[i] = Sample(ds[i], history, config, rng)
	}, pcfg)

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("draw %d: %w", i, err)
		}
	}
	return out, nil
}
