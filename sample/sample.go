// Package sample provides token sampling strategies for Quill.
//
// This package wraps the internal sample implementation and provides
// a clean public API for drawing indices from probability distributions.
//
// Components:
//   - Config: Sampling configuration shared by every strategy
//   - Sample / Sampler: Strategy dispatch over a distribution
//   - Greedy, Temperature, TopK, TopP, Typical: Individual strategies
//   - Generator: Step-by-step rollouts against a Model
//   - Speculative: Draft-and-verify decoding with two Models
//   - Each: Independent draws over a batch of distributions
//
// Example usage:
//
//	import (
//	    "github.com/quill-ml/quill/prob"
//	    "github.com/quill-ml/quill/sample"
//	)
//
//	config := sample.Config{
//	    Method:      sample.MethodTopP,
//	    Temperature: 0.7,
//	    TopP:        0.9,
//	    Seed:        42,
//	}
//	sampler, err := sample.NewSampler(config)
//	if err != nil {
//	    // handle invalid config
//	}
//	idx, err := sampler.Sample(prob.Distribution{0.7, 0.2, 0.1}, nil)
package sample

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/quill-ml/quill/internal/parallel"
	"github.com/quill-ml/quill/internal/prob"
	"github.com/quill-ml/quill/internal/sample"
)

// Configuration

// Method selects a single-step sampling strategy.
type Method = sample.Method

// Recognized sampling methods. An unset or unrecognized method routes
// to top-p.
const (
	MethodGreedy      = sample.MethodGreedy
	MethodTemperature = sample.MethodTemperature
	MethodTopK        = sample.MethodTopK
	MethodTopP        = sample.MethodTopP
	MethodTypical     = sample.MethodTypical
)

// Config configures token sampling and sequence search.
//
// Parameters:
//   - Method: Strategy to dispatch to (greedy, temperature, top_k, top_p, typical)
//   - Temperature: Distribution reshaping (<1 sharpens, >1 flattens, 1 = identity)
//   - TopK: Number of most probable indices kept by top-k
//   - TopP: Cumulative mass kept by top-p (nucleus) sampling
//   - Tau: Probability mass kept by typical sampling
//   - RepetitionPenalty: Divisor for indices already in the history (1 = off)
//   - BeamWidth / MaxLength: Beam search width and step bound
//   - NumGroups / GroupSize / DiversityPenalty: Diverse beam search shape
//   - Seed: Random seed for reproducibility (-1 = random)
type Config = sample.Config

// ConfigError reports a configuration option outside its valid range.
type ConfigError = sample.ConfigError

// ErrInvalidConfig matches every ConfigError via errors.Is.
var ErrInvalidConfig = sample.ErrInvalidConfig

// DefaultConfig returns sensible defaults for every option.
//
// Defaults:
//   - Method: top_p
//   - Temperature: 1.0
//   - TopK: 40
//   - TopP: 0.9
//   - Tau: 0.95
//   - RepetitionPenalty: 1.2
//   - BeamWidth: 3, MaxLength: 20
//   - NumGroups: 2, GroupSize: 2, DiversityPenalty: 0.5
//   - Seed: -1 (random)
func DefaultConfig() Config {
	return sample.DefaultConfig()
}

// ParseYAML decodes a YAML document over DefaultConfig, so absent fields
// keep their defaults.
func ParseYAML(data []byte) (Config, error) {
	return sample.ParseYAML(data)
}

// LoadFile reads a YAML config file. See ParseYAML.
func LoadFile(path string) (Config, error) {
	return sample.LoadFile(path)
}

// Strategies

// Sample selects one index from d according to config, penalizing indices
// in history first when a repetition penalty is configured.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	idx, err := sample.Sample(d, history, sample.Config{Method: sample.MethodTopK, TopK: 40}, rng)
func Sample(d prob.Distribution, history []int, config Config, rng *rand.Rand) (int, error) {
	return sample.Sample(d, history, config, rng)
}

// Greedy returns the index of the largest probability, the first one on
// ties. It needs no RNG.
func Greedy(d prob.Distribution) (int, error) {
	return sample.Greedy(d)
}

// Temperature reshapes d by temperature t and draws one index.
func Temperature(d prob.Distribution, t float64, rng *rand.Rand) (int, error) {
	return sample.Temperature(d, t, rng)
}

// ApplyTemperature returns d reshaped by temperature t without drawing.
func ApplyTemperature(d prob.Distribution, t float64) (prob.Distribution, error) {
	return sample.ApplyTemperature(d, t)
}

// TopK draws one index among the k most probable entries of d.
func TopK(d prob.Distribution, k int, rng *rand.Rand) (int, error) {
	return sample.TopK(d, k, rng)
}

// TopP draws one index from the smallest probability-sorted prefix of d
// whose cumulative mass reaches p.
func TopP(d prob.Distribution, p float64, rng *rand.Rand) (int, error) {
	return sample.TopP(d, p, rng)
}

// Typical draws one index among the entries whose surprise is closest to
// the entropy of d, keeping at least tau probability mass.
func Typical(d prob.Distribution, tau float64, rng *rand.Rand) (int, error) {
	return sample.Typical(d, tau, rng)
}

// ApplyRepetitionPenalty divides the probability of every distinct index
// in history by penalty and renormalizes. d is left untouched.
func ApplyRepetitionPenalty(d prob.Distribution, history []int, penalty float64) (prob.Distribution, error) {
	return sample.ApplyRepetitionPenalty(d, history, penalty)
}

// Sampler

// Sampler binds a resolved Config to an owned RNG.
type Sampler = sample.Sampler

// NewSampler creates a sampler with the given configuration. Unset fields
// resolve to their defaults.
//
// Example:
//
//	sampler, err := sample.NewSampler(sample.Config{
//	    Method: sample.MethodTypical,
//	    Tau:    0.9,
//	    Seed:   42,
//	})
func NewSampler(config Config) (*Sampler, error) {
	return sample.NewSampler(config)
}

// Generation

// Model produces the next-step distribution for a prefix of already
// chosen indices.
type Model = sample.Model

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc = sample.ModelFunc

// Result is a single step of a rollout.
type Result = sample.Result

// RolloutConfig configures a rollout.
type RolloutConfig = sample.RolloutConfig

// Generator drives a Sampler against a Model step by step.
type Generator = sample.Generator

// GeneratorOption configures a Generator or a Speculative.
type GeneratorOption = sample.GeneratorOption

// WithLogger attaches a logger for per-step debug output.
func WithLogger(l *zap.Logger) GeneratorOption {
	return sample.WithLogger(l)
}

// WithLookahead sets how many tokens Speculative drafts per round.
func WithLookahead(n int) GeneratorOption {
	return sample.WithLookahead(n)
}

// NewGenerator creates a generator for the given model and sampling
// config.
//
// Example:
//
//	gen, err := sample.NewGenerator(model, sample.DefaultConfig())
//	out, err := gen.Generate(ctx, prefix, sample.RolloutConfig{MaxSteps: 50})
func NewGenerator(model Model, config Config, opts ...GeneratorOption) (*Generator, error) {
	return sample.NewGenerator(model, config, opts...)
}

// Speculative accelerates a rollout by drafting tokens with a cheap model
// and verifying them against a target model.
type Speculative = sample.Speculative

// NewSpeculative creates a speculative decoder over a draft and a target
// model sharing one sampling config.
func NewSpeculative(draft, target Model, config Config, opts ...GeneratorOption) (*Speculative, error) {
	return sample.NewSpeculative(draft, target, config, opts...)
}

// Batching

// ParallelConfig controls how Each spreads draws across workers.
type ParallelConfig = parallel.Config

// DefaultParallelConfig enables parallelism with one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Each draws one index from every distribution independently, sharing one
// config. Draws are seeded per index, so results do not depend on worker
// scheduling.
func Each(ds []prob.Distribution, histories [][]int, config Config, pcfg ParallelConfig) ([]int, error) {
	return sample.Each(ds, histories, config, pcfg)
}
