// Package beam implements beam search and diverse beam search over
// caller-supplied expansion functions.
//
// A search grows partial sequences of expansion indices, scoring them by
// cumulative log-probability and keeping a bounded set of the best
// hypotheses per step. The caller owns the state type; the engine only
// requires that states can report whether they are finished.
package beam

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/quill-ml/quill/internal/prob"
	"github.com/quill-ml/quill/internal/sample"
)

// Common errors.
var (
	ErrExpansionMismatch = errors.New("expansion states and probabilities differ in length")
	ErrNoSuccessors      = errors.New("expansion produced no successors")
)

// State is the capability a search state must expose: whether expanding it
// any further is meaningful.
type State interface {
	Done() bool
}

// Candidate is one hypothesis in a beam: the caller state reached, the
// cumulative score, and the expansion indices chosen from the root.
type Candidate[S State] struct {
	State    S       // Caller state after the last expansion
	Score    float64 // Cumulative log-probability, minus any diversity deduction
	Sequence []int   // Expansion indices chosen from the root
	Done     bool    // No further expansion
}

// Expansion pairs the successor states of one candidate with the
// probability of stepping into each. States and Probs must be equally
// long.
type Expansion[S State] struct {
	States []S
	Probs  prob.Distribution
}

// ExpandFunc produces the successors of a state. Probabilities are
// expected in [0, 1]: scores add ln(p + eps) without clamping, so values
// outside that range distort scores silently.
type ExpandFunc[S State] func(s S) (Expansion[S], error)

// node is a live hypothesis during a search; its sequence stays in the
// arena until materialization.
type node[S State] struct {
	state S
	score float64
	id    int // arena node id, -1 for the root
	depth int // tokens chosen so far
	done  bool
}

// Search runs beam search from start and returns the best final candidate.
//
// Every step expands each unfinished candidate through expand, scores
// children by score + ln(p + eps), carries finished candidates through
// unchanged, and keeps the config.BeamWidth best of the merged set. The
// search stops early once every candidate is done, otherwise after
// config.MaxLength steps.
//
// ctx is polled between steps; an individual expansion call is never
// interrupted.
func Search[S State](ctx context.Context, expand ExpandFunc[S], start S, config sample.Config, opts ...Option) (Candidate[S], error) {
	pool, err := SearchAll(ctx, expand, start, config, opts...)
	if err != nil {
		return Candidate[S]{}, err
	}
	return pool[0], nil
}

// SearchAll runs beam search like Search but returns the whole final beam,
// best first. Useful when the runner-up hypotheses matter, e.g. for
// ranking several continuations.
func SearchAll[S State](ctx context.Context, expand ExpandFunc[S], start S, config sample.Config, opts ...Option) ([]Candidate[S], error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	final, ar, err := runBeam(ctx, expand, start, config.BeamWidth, config.MaxLength, nil, o.logger)
	if err != nil {
		return nil, err
	}

	pool := make([]Candidate[S], len(final))
	for i, n := range final {
		pool[i] = materialize(ar, n)
	}

	o.logger.Info("beam search finished",
		zap.Int("length", len(pool[0].Sequence)),
		zap.Float64("score", pool[0].Score),
	)
	return pool, nil
}

// runBeam executes one beam search loop and returns the final beam nodes,
// sorted best first, along with the arena holding their sequences.
// penalize, when non-nil, is an extra per-placement score deduction.
func runBeam[S State](
	ctx context.Context,
	expand ExpandFunc[S],
	start S,
	width, maxLength int,
	penalize func(pos, token int) float64,
	logger *zap.Logger,
) ([]node[S], *arena, error) {
	ar := &arena{}
	beam := []node[S]{{state: start, score: 0, id: -1, depth: 0, done: false}}

	for step := 0; step < maxLength; step++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if allDone(beam) {
			break
		}

		next, err := expandBeam(expand, ar, beam, penalize)
		if err != nil {
			return nil, nil, err
		}
		if len(next) == 0 {
			return nil, nil, ErrNoSuccessors
		}

		sortByScore(next)
		if len(next) > width {
			next = next[:width]
		}
		beam = next

		logger.Debug("beam step",
			zap.Int("step", step),
			zap.Int("candidates", len(beam)),
			zap.Float64("best", beam[0].score),
		)
	}

	return beam, ar, nil
}

// expandBeam produces the merged children and pass-throughs of one step.
func expandBeam[S State](
	expand ExpandFunc[S],
	ar *arena,
	beam []node[S],
	penalize func(pos, token int) float64,
) ([]node[S], error) {
	next := make([]node[S], 0, len(beam))

	for _, cand := range beam {
		if cand.done {
			// Finished hypotheses pass through unexpanded.
			next = append(next, cand)
			continue
		}

		exp, err := expand(cand.state)
		if err != nil {
			return nil, fmt.Errorf("expand: %w", err)
		}
		if len(exp.States) != len(exp.Probs) {
			return nil, fmt.Errorf("%w: %d states, %d probabilities", ErrExpansionMismatch, len(exp.States), len(exp.Probs))
		}

		for i, s := range exp.States {
			score := cand.score + math.Log(exp.Probs[i]+prob.Epsilon)
			if penalize != nil {
				score -= penalize(cand.depth, i)
			}
			next = append(next, node[S]{
				state: s,
				score: score,
				id:    ar.add(cand.id, i),
				depth: cand.depth + 1,
				done:  s.Done(),
			})
		}
	}

	return next, nil
}

// sortByScore orders nodes best first, stable so equal scores keep their
// merge order.
func sortByScore[S State](nodes []node[S]) {
	sort.SliceStable(nodes, func(a, b int) bool {
		return nodes[a].score > nodes[b].score
	})
}

func allDone[S State](beam []node[S]) bool {
	for _, n := range beam {
		if !n.done {
			return false
		}
	}
	return true
}

// materialize turns a live node into a Candidate with its sequence walked
// out of the arena.
func materialize[S State](ar *arena, n node[S]) Candidate[S] {
	return Candidate[S]{
		State:    n.state,
		Score:    n.score,
		Sequence: ar.sequence(n.id),
		Done:     n.done,
	}
}
