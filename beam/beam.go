// Package beam provides beam search and diverse beam search for Quill.
//
// This package wraps the internal beam implementation and provides
// a clean public API for searching over caller-supplied state spaces.
//
// Components:
//   - Search / SearchAll: Beam search returning the best or all final candidates
//   - Diverse: Diverse beam search over sequential penalized groups
//   - State / ExpandFunc: The caller-side contract
//
// Example usage:
//
//	import (
//	    "context"
//
//	    "github.com/quill-ml/quill/beam"
//	    "github.com/quill-ml/quill/prob"
//	    "github.com/quill-ml/quill/sample"
//	)
//
//	type step struct{ depth int }
//
//	func (s step) Done() bool { return s.depth >= 5 }
//
//	expand := func(s step) (beam.Expansion[step], error) {
//	    return beam.Expansion[step]{
//	        States: []step{{s.depth + 1}, {s.depth + 1}},
//	        Probs:  prob.Distribution{0.6, 0.4},
//	    }, nil
//	}
//
//	best, err := beam.Search(context.Background(), expand, step{}, sample.Config{BeamWidth: 3})
package beam

import (
	"context"

	"go.uber.org/zap"

	"github.com/quill-ml/quill/internal/beam"
	"github.com/quill-ml/quill/internal/sample"
)

// Errors

// ErrExpansionMismatch reports an Expansion whose States and Probs differ
// in length.
var ErrExpansionMismatch = beam.ErrExpansionMismatch

// ErrNoSuccessors reports a search step where no candidate produced any
// successor.
var ErrNoSuccessors = beam.ErrNoSuccessors

// Contract

// State is the capability a search state must expose: whether expanding
// it any further is meaningful.
type State = beam.State

// Candidate is one hypothesis in a beam: the caller state reached, the
// cumulative score, and the expansion indices chosen from the root.
type Candidate[S State] = beam.Candidate[S]

// Expansion pairs the successor states of one candidate with the
// probability of stepping into each.
type Expansion[S State] = beam.Expansion[S]

// ExpandFunc produces the successors of a state.
type ExpandFunc[S State] = beam.ExpandFunc[S]

// Option configures a search.
type Option = beam.Option

// WithLogger attaches a logger for per-step debug output.
func WithLogger(l *zap.Logger) Option {
	return beam.WithLogger(l)
}

// Search

// Search runs beam search from start and returns the best final
// candidate. config.BeamWidth candidates are kept per step and the search
// runs at most config.MaxLength steps, stopping early once every
// candidate is done.
//
// Example:
//
//	best, err := beam.Search(ctx, expand, start, sample.Config{BeamWidth: 5, MaxLength: 32})
func Search[S State](ctx context.Context, expand ExpandFunc[S], start S, config sample.Config, opts ...Option) (Candidate[S], error) {
	return beam.Search(ctx, expand, start, config, opts...)
}

// SearchAll runs beam search like Search but returns the whole final
// beam, best first.
func SearchAll[S State](ctx context.Context, expand ExpandFunc[S], start S, config sample.Config, opts ...Option) ([]Candidate[S], error) {
	return beam.SearchAll(ctx, expand, start, config, opts...)
}

// Diverse runs diverse beam search: config.NumGroups sub-beams of
// config.GroupSize run one after another, and candidates lose
// config.DiversityPenalty per token collision with earlier groups. The
// merged pool is returned best first with penalties baked into scores.
//
// Example:
//
//	pool, err := beam.Diverse(ctx, expand, start, sample.Config{
//	    NumGroups:        4,
//	    GroupSize:        2,
//	    DiversityPenalty: 0.5,
//	})
func Diverse[S State](ctx context.Context, expand ExpandFunc[S], start S, config sample.Config, opts ...Option) ([]Candidate[S], error) {
	return beam.Diverse(ctx, expand, start, config, opts...)
}
