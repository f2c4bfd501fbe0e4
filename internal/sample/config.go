// Package sample implements single-step token sampling strategies over
// probability distributions.
//
// Each strategy narrows or reshapes a distribution and draws one index from
// the result: greedy selection, temperature scaling, top-k, top-p (nucleus)
// and typical sampling, plus a repetition penalty composable with any of
// them. Sample routes between strategies based on a Config; Generator and
// Speculative drive the strategies step by step against a Model.
package sample

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Method selects a single-step sampling strategy.
type Method string

// Recognized sampling methods.
const (
	MethodGreedy      Method = "greedy"
	MethodTemperature Method = "temperature"
	MethodTopK        Method = "top_k"
	MethodTopP        Method = "top_p"
	MethodTypical     Method = "typical"
)

// Config configures token sampling and sequence search.
//
// A zero field means "unset" and resolves to its default via WithDefaults,
// except DiversityPenalty (zero disables the penalty) and Seed (zero
// resolves to -1, a random seed).
type Config struct {
	// Method selects the strategy: greedy, temperature, top_k, top_p or
	// typical. Unset or unrecognized routes to top_p.
	Method Method `yaml:"method" json:"method"`

	// Temperature reshapes the distribution before drawing.
	// <1 sharpens toward the mode, >1 flattens, 1 = identity.
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// TopK restricts drawing to the K most probable indices.
	TopK int `yaml:"top_k" json:"top_k"`

	// TopP restricts drawing to the smallest sorted prefix whose
	// cumulative mass reaches P. 1 = full distribution.
	TopP float64 `yaml:"top_p" json:"top_p"`

	// Tau is the probability mass kept by typical sampling.
	Tau float64 `yaml:"tau" json:"tau"`

	// RepetitionPenalty divides the probability of indices already in
	// history, once per distinct index. 1 = no penalty.
	RepetitionPenalty float64 `yaml:"repetition_penalty" json:"repetition_penalty"`

	// BeamWidth is the number of candidates kept after each beam step.
	BeamWidth int `yaml:"beam_width" json:"beam_width"`

	// MaxLength bounds the number of steps of a search or rollout.
	MaxLength int `yaml:"max_length" json:"max_length"`

	// NumGroups is the number of sub-beams in diverse beam search.
	NumGroups int `yaml:"num_groups" json:"num_groups"`

	// GroupSize is the per-group beam width in diverse beam search.
	GroupSize int `yaml:"group_size" json:"group_size"`

	// DiversityPenalty is the score deduction per token collision with
	// earlier groups. 0 = no penalty.
	DiversityPenalty float64 `yaml:"diversity_penalty" json:"diversity_penalty"`

	// Seed for reproducibility. -1 = random.
	Seed int64 `yaml:"seed" json:"seed"`
}

// DefaultConfig returns sensible defaults for every option.
func DefaultConfig() Config {
	return Config{
		Method:            MethodTopP,
		Temperature:       1.0,
		TopK:              40,
		TopP:              0.9,
		Tau:               0.95,
		RepetitionPenalty: 1.2,
		BeamWidth:         3,
		MaxLength:         20,
		NumGroups:         2,
		GroupSize:         2,
		DiversityPenalty:  0.5,
		Seed:              -1,
	}
}

// WithDefaults returns a copy of c with unset fields resolved to their
// defaults. Zero means unset for every field whose valid range excludes
// zero; an explicit zero DiversityPenalty is kept and a zero Seed becomes
// -1.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Method == "" {
		c.Method = def.Method
	}
	if c.Temperature == 0 {
		c.Temperature = def.Temperature
	}
	if c.TopK == 0 {
		c.TopK = def.TopK
	}
	if c.TopP == 0 {
		c.TopP = def.TopP
	}
	if c.Tau == 0 {
		c.Tau = def.Tau
	}
	if c.RepetitionPenalty == 0 {
		c.RepetitionPenalty = def.RepetitionPenalty
	}
	if c.BeamWidth == 0 {
		c.BeamWidth = def.BeamWidth
	}
	if c.MaxLength == 0 {
		c.MaxLength = def.MaxLength
	}
	if c.NumGroups == 0 {
		c.NumGroups = def.NumGroups
	}
	if c.GroupSize == 0 {
		c.GroupSize = def.GroupSize
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	return c
}

// Validate reports the first option outside its valid range. It expects a
// resolved config; call WithDefaults first when fields may be unset.
func (c Config) Validate() error {
	if c.Temperature <= 0 {
		return &ConfigError{Option: "temperature", Value: c.Temperature, Reason: "must be > 0"}
	}
	if c.TopK <= 0 {
		return &ConfigError{Option: "top_k", Value: c.TopK, Reason: "must be > 0"}
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return &ConfigError{Option: "top_p", Value: c.TopP, Reason: "must be in (0, 1]"}
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return &ConfigError{Option: "tau", Value: c.Tau, Reason: "must be in (0, 1]"}
	}
	if c.RepetitionPenalty < 1 {
		return &ConfigError{Option: "repetition_penalty", Value: c.RepetitionPenalty, Reason: "must be >= 1"}
	}
	if c.BeamWidth <= 0 {
		return &ConfigError{Option: "beam_width", Value: c.BeamWidth, Reason: "must be > 0"}
	}
	if c.MaxLength <= 0 {
		return &ConfigError{Option: "max_length", Value: c.MaxLength, Reason: "must be > 0"}
	}
	if c.NumGroups <= 0 {
		return &ConfigError{Option: "num_groups", Value: c.NumGroups, Reason: "must be > 0"}
	}
	if c.GroupSize <= 0 {
		return &ConfigError{Option: "group_size", Value: c.GroupSize, Reason: "must be > 0"}
	}
	if c.DiversityPenalty < 0 {
		return &ConfigError{Option: "diversity_penalty", Value: c.DiversityPenalty, Reason: "must be >= 0"}
	}
	return nil
}

// ParseYAML decodes a YAML document over DefaultConfig, so absent fields
// keep their defaults. Unknown non-empty method names are rejected even
// though Sample would fall back to top_p for them.
func ParseYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse sampling config: %w", err)
	}

	switch cfg.Method {
	case MethodGreedy, MethodTemperature, MethodTopK, MethodTopP, MethodTypical, "":
	default:
		return Config{}, &ConfigError{Option: "method", Value: string(cfg.Method), Reason: "unknown method"}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML config file. See ParseYAML.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read sampling config: %w", err)
	}
	return ParseYAML(data)
}
