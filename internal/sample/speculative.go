package sample

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/quill-ml/quill/internal/prob"
)

// Speculative accelerates a rollout by drafting tokens with a cheap model
// and verifying them against a target model.
//
// Algorithm per round:
//  1. The draft model proposes up to Lookahead tokens.
//  2. Each proposal is accepted with probability min(1, p_target/p_draft),
//     taken from the raw model distributions.
//  3. The first rejection is replaced by a draw from the residual
//     distribution max(0, target-draft), renormalized.
//  4. When every proposal survives, one extra token is drawn from the
//     target's next distribution.
//
// Both models are called synchronously, one position at a time.
type Speculative struct {
	draft     Model
	target    Model
	sampler   *Sampler
	rng       *rand.Rand
	logger    *zap.Logger
	lookahead int

	// Stats
	totalDrafted  int
	totalAccepted int
}

// NewSpeculative creates a speculative decoder over a draft and a target
// model sharing one sampling config.
func NewSpeculative(draft, target Model, config Config, opts ...GeneratorOption) (*Speculative, error) {
	options := newGeneratorOptions(opts)
	if options.lookahead <= 0 {
		return nil, &ConfigError{Option: "lookahead", Value: options.lookahead, Reason: "must be > 0"}
	}

	sampler, err := NewSampler(config)
	if err != nil {
		return nil, err
	}

	config = sampler.Config()
	var rng *rand.Rand
	if config.Seed >= 0 {
		rng = rand.New(rand.NewSource(config.Seed)) //nolint:gosec // Intentional deterministic seed for reproducibility
	} else {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // User requested random seed
	}

	return &Speculative{
		draft:     draft,
		target:    target,
		sampler:   sampler,
		rng:       rng,
		logger:    options.logger,
		lookahead: options.lookahead,
	}, nil
}

// Generate produces up to maxTokens indices continuing prefix.
func (s *Speculative) Generate(ctx context.Context, prefix []int, maxTokens int) ([]int, error) {
	if maxTokens <= 0 {
		return nil, &ConfigError{Option: "max_tokens", Value: maxTokens, Reason: "must be > 0"}
	}

	// Reset stats
	s.totalDrafted = 0
	s.totalAccepted = 0

	generated := make([]int, 0, maxTokens)
	history := append([]int{}, prefix...)

	for len(generated) < maxTokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 1. Draft proposes up to lookahead tokens.
		k := min(s.lookahead, maxTokens-len(generated))
		draftTokens, draftDists, err := s.speculate(history, k)
		if err != nil {
			return nil, err
		}

		// 2. Target distributions at every proposal position.
		targetDists := s.verify(history, draftTokens)

		// 3. Accept with modified rejection sampling.
		numAccepted, next, err := s.accept(draftTokens, draftDists, targetDists)
		if err != nil {
			return nil, err
		}

		s.logger.Debug("speculative round",
			zap.Int("drafted", k),
			zap.Int("accepted", numAccepted),
		)

		for i := 0; i < numAccepted; i++ {
			generated = append(generated, draftTokens[i])
			history = append(history, draftTokens[i])
		}

		// Rejection replacement or continuation draw.
		if len(generated) < maxTokens {
			generated = append(generated, next)
			history = append(history, next)
		}
	}

	return generated, nil
}

// speculate proposes k tokens with the draft model, recording the raw
// distribution each was drawn against.
func (s *Speculative) speculate(history []int, k int) ([]int, []prob.Distribution, error) {
	tokens := make([]int, 0, k)
	dists := make([]prob.Distribution, 0, k)
	prefix := append([]int{}, history...)

	for i := 0; i < k; i++ {
		d := s.draft.Next(prefix)
		idx, err := s.sampler.Sample(d, prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("draft step %d: %w", i, err)
		}
		tokens = append(tokens, idx)
		dists = append(dists, d)
		prefix = append(prefix, idx)
	}

	s.totalDrafted += k
	return tokens, dists, nil
}

// verify collects the target model's distributions at every proposal
// position plus one more for the continuation draw.
func (s *Speculative) verify(history, draftTokens []int) []prob.Distribution {
	dists := make([]prob.Distribution, 0, len(draftTokens)+1)
	prefix := append([]int{}, history...)

	for _, tok := range draftTokens {
		dists = append(dists, s.target.Next(prefix))
		prefix = append(prefix, tok)
	}
	dists = append(dists, s.target.Next(prefix))

	return dists
}

// accept determines how many proposals to keep.
// Accepts while r < min(1, p_target/p_draft); the first rejection is
// replaced by a residual draw. Returns (numAccepted, nextToken).
func (s *Speculative) accept(
	draftTokens []int,
	draftDists, targetDists []prob.Distribution,
) (int, int, error) {
	numAccepted := 0

	for i, token := range draftTokens {
		draftDist := draftDists[i]
		targetDist := targetDists[i]
		if len(targetDist) != len(draftDist) {
			return 0, 0, fmt.Errorf("draft and target vocabularies differ: %d vs %d", len(draftDist), len(targetDist))
		}

		r := s.rng.Float64()
		acceptProb := math.Min(1, targetDist[token]/math.Max(draftDist[token], prob.Epsilon))

		if r < acceptProb {
			numAccepted++
			continue
		}

		// Reject: resample from the residual distribution.
		next, err := s.resample(draftDist, targetDist)
		if err != nil {
			return 0, 0, err
		}
		s.totalAccepted += numAccepted
		return numAccepted, next, nil
	}

	// All proposals survived: continue from the target.
	next, err := s.sampler.Sample(targetDists[len(draftTokens)], nil)
	if err != nil {
		return 0, 0, err
	}
	s.totalAccepted += numAccepted
	return numAccepted, next, nil
}

// resample draws from max(0, target-draft) renormalized, falling back to
// the target distribution when the residual has no mass.
func (s *Speculative) resample(draftDist, targetDist prob.Distribution) (int, error) {
	residual := make(prob.Distribution, len(targetDist))
	for i := range residual {
		residual[i] = math.Max(0, targetDist[i]-draftDist[i])
	}

	if floats.Sum(residual) > 0 {
		if err := prob.Renormalize(residual); err != nil {
			return 0, err
		}
		return prob.Draw(residual, s.rng)
	}

	return prob.Draw(targetDist, s.rng)
}

// AcceptanceRate returns accepted/drafted for the latest Generate call.
func (s *Speculative) AcceptanceRate() float64 {
	if s.totalDrafted == 0 {
		return 0
	}
	return float64(s.totalAccepted) / float64(s.totalDrafted)
}

// Stats returns drafted and accepted counts with the acceptance rate.
func (s *Speculative) Stats() (drafted, accepted int, rate float64) {
	return s.totalDrafted, s.totalAccepted, s.AcceptanceRate()
}
