package sample

import (
	"math/rand"

	"github.com/quill-ml/quill/internal/prob"
)

// Sample selects one index from d according to config.
//
// When history is non-empty and the resolved RepetitionPenalty exceeds 1,
// the penalty is applied before the configured method runs. Method routing:
// greedy, temperature, top_k and typical go to their strategies; anything
// else, including an unset method, goes to top_p.
//
// Sample is pure given its inputs and the RNG: it keeps no hidden state, so
// independent calls with distinct RNGs may run concurrently.
func Sample(d prob.Distribution, history []int, config Config, rng *rand.Rand) (int, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return 0, err
	}
	if err := prob.Validate(d); err != nil {
		return 0, err
	}

	if len(history) > 0 && config.RepetitionPenalty > 1 {
		var err error
		d, err = ApplyRepetitionPenalty(d, history, config.RepetitionPenalty)
		if err != nil {
			return 0, err
		}
	}

	switch config.Method {
	case MethodGreedy:
		return Greedy(d)
	case MethodTemperature:
		return Temperature(d, config.Temperature, rng)
	case MethodTopK:
		return TopK(d, config.TopK, rng)
	case MethodTypical:
		return Typical(d, config.Tau, rng)
	default:
		// MethodTopP and anything unrecognized.
		return TopP(d, config.TopP, rng)
	}
}

// Sampler binds a resolved Config to an owned RNG.
//
// A Sampler is not safe for concurrent use; create one per goroutine or
// call Sample directly with distinct RNGs.
type Sampler struct {
	config Config
	rng    *rand.Rand
}

// NewSampler creates a sampler with the given configuration. Unset fields
// resolve to their defaults before validation.
func NewSampler(config Config) (*Sampler, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if config.Seed >= 0 {
		rng = rand.New(rand.NewSource(config.Seed)) //nolint:gosec // Intentional deterministic seed for reproducibility
	} else {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // User requested random seed
	}

	return &Sampler{
		config: config,
		rng:    rng,
	}, nil
}

// Sample selects one index from d, applying the repetition penalty against
// history first.
func (s *Sampler) Sample(d prob.Distribution, history []int) (int, error) {
	return Sample(d, history, s.config, s.rng)
}

// Config returns the resolved configuration.
func (s *Sampler) Config() Config {
	return s.config
}
