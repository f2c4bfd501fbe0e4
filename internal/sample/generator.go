package sample

import (
	"context"

	"go.uber.org/zap"

	"github.com/quill-ml/quill/internal/prob"
)

// Model produces the next-step distribution for a prefix of already chosen
// indices. Implementations decide what the prefix means; the engine only
// requires that returned distributions are structurally valid.
type Model interface {
	Next(prefix []int) prob.Distribution
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(prefix []int) prob.Distribution

// Next implements the Model interface.
func (f ModelFunc) Next(prefix []int) prob.Distribution {
	return f(prefix)
}

// Result is a single step of a rollout.
type Result struct {
	Index  int    // Chosen index
	Step   int    // 0-based step number
	Done   bool   // Is the rollout complete
	Reason string // Stop reason: "stop_token", "max_length"
	Err    error  // Error if any
}

// RolloutConfig configures a rollout. The zero value runs the sampler's
// MaxLength steps with no stop tokens.
type RolloutConfig struct {
	// MaxSteps caps the rollout. 0 = the sampling config's MaxLength.
	MaxSteps int

	// MinSteps is the number of steps before stop tokens are honored.
	MinSteps int

	// StopTokens end the rollout when drawn.
	StopTokens []int
}

// Generator drives a Sampler against a Model step by step, so the full
// strategy pipeline (penalty, method, draw) applies at every position.
type Generator struct {
	model   Model
	sampler *Sampler
	logger  *zap.Logger
}

// GeneratorOption configures a Generator or a Speculative.
type GeneratorOption func(*generatorOptions)

type generatorOptions struct {
	logger    *zap.Logger
	lookahead int
}

// WithLogger attaches a logger for per-step debug output.
func WithLogger(l *zap.Logger) GeneratorOption {
	return func(o *generatorOptions) {
		o.logger = l
	}
}

// WithLookahead sets how many tokens Speculative drafts per round.
func WithLookahead(n int) GeneratorOption {
	return func(o *generatorOptions) {
		o.lookahead = n
	}
}

// NewGenerator creates a generator for the given model and sampling config.
// Unset config fields resolve to their defaults.
func NewGenerator(model Model, config Config, opts ...GeneratorOption) (*Generator, error) {
	options := newGeneratorOptions(opts)

	sampler, err := NewSampler(config)
	if err != nil {
		return nil, err
	}

	return &Generator{
		model:   model,
		sampler: sampler,
		logger:  options.logger,
	}, nil
}

func newGeneratorOptions(opts []GeneratorOption) *generatorOptions {
	options := &generatorOptions{
		logger:    zap.NewNop(),
		lookahead: 5,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Generate runs a rollout from prefix and returns the indices chosen after
// it, excluding the prefix itself.
func (g *Generator) Generate(ctx context.Context, prefix []int, config RolloutConfig) ([]int, error) {
	var out []int
	err := g.generate(ctx, prefix, config, func(res Result) bool {
		if res.Err != nil {
			return false
		}
		out = append(out, res.Index)
		return !res.Done
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stream runs a rollout and delivers one Result per step on the returned
// channel. The channel closes when the rollout ends, fails, or ctx is
// canceled; a failure arrives as a final Result with Err set.
func (g *Generator) Stream(ctx context.Context, prefix []int, config RolloutConfig) <-chan Result {
	ch := make(chan Result, 1)

	go func() {
		defer close(ch)
		_ = g.generate(ctx, prefix, config, func(res Result) bool {
			select {
			case ch <- res:
			case <-ctx.Done():
				return false
			}
			return !res.Done && res.Err == nil
		})
	}()

	return ch
}

// generate is the core rollout loop.
func (g *Generator) generate(
	ctx context.Context,
	prefix []int,
	config RolloutConfig,
	callback func(Result) bool,
) error {
	maxSteps := config.MaxSteps
	if maxSteps <= 0 {
		maxSteps = g.sampler.Config().MaxLength
	}

	stop := make(map[int]bool, len(config.StopTokens))
	for _, tok := range config.StopTokens {
		stop[tok] = true
	}

	history := append([]int{}, prefix...)

	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		d := g.model.Next(history)
		idx, err := g.sampler.Sample(d, history)
		if err != nil {
			callback(Result{Step: step, Done: true, Err: err})
			return err
		}

		history = append(history, idx)
		generated := step + 1

		done, reason := stopReason(idx, generated, maxSteps, config.MinSteps, stop)

		g.logger.Debug("rollout step",
			zap.Int("step", step),
			zap.Int("index", idx),
			zap.Bool("done", done),
		)
		if done {
			g.logger.Info("rollout finished",
				zap.Int("steps", generated),
				zap.String("reason", reason),
			)
		}

		if !callback(Result{Index: idx, Step: step, Done: done, Reason: reason}) || done {
			return nil
		}
	}

	return nil
}

// stopReason decides whether the rollout ends after drawing idx.
func stopReason(idx, generated, maxSteps, minSteps int, stop map[int]bool) (bool, string) {
	if generated >= minSteps && stop[idx] {
		return true, "stop_token"
	}
	if generated >= maxSteps {
		return true, "max_length"
	}
	return false, ""
}
