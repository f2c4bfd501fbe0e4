package beam

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/quill-ml/quill/internal/sample"
)

// Diverse runs diverse beam search: config.NumGroups sub-beams of
// config.GroupSize, one after another. While a group runs, every child's
// score drops by config.DiversityPenalty for each finalized candidate of
// an earlier group that chose the same token at the same position, which
// steers later groups away from hypotheses the pool already holds.
//
// The returned pool is every group's final beam merged and sorted best
// first. Scores keep the diversity deduction baked in, so a penalized
// candidate ranks below an unpenalized one with the same log-probability.
//
// With a zero penalty every group degenerates to an independent beam
// search of width config.GroupSize.
func Diverse[S State](ctx context.Context, expand ExpandFunc[S], start S, config sample.Config, opts ...Option) ([]Candidate[S], error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	// usage[pos][token] counts how many finalized candidates of earlier
	// groups chose token at sequence position pos.
	usage := make(map[int]map[int]int)
	penalize := func(pos, token int) float64 {
		return config.DiversityPenalty * float64(usage[pos][token])
	}

	pool := make([]Candidate[S], 0, config.NumGroups*config.GroupSize)

	for g := 0; g < config.NumGroups; g++ {
		final, ar, err := runBeam(ctx, expand, start, config.GroupSize, config.MaxLength, penalize, o.logger)
		if err != nil {
			return nil, err
		}

		for _, n := range final {
			cand := materialize(ar, n)
			pool = append(pool, cand)
			for pos, tok := range cand.Sequence {
				if usage[pos] == nil {
					usage[pos] = make(map[int]int)
				}
				usage[pos][tok]++
			}
		}

		o.logger.Debug("diverse group finished",
			zap.Int("group", g),
			zap.Int("pool", len(pool)),
		)
	}

	sort.SliceStable(pool, func(a, b int) bool {
		return pool[a].Score > pool[b].Score
	})

	o.logger.Info("diverse beam search finished",
		zap.Int("candidates", len(pool)),
		zap.Float64("best", pool[0].Score),
	)
	return pool, nil
}
