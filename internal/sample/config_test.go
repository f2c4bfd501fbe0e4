package sample

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, MethodTopP, config.Method)
	assert.Equal(t, 1.0, config.Temperature)
	assert.Equal(t, 40, config.TopK)
	assert.Equal(t, 0.9, config.TopP)
	assert.Equal(t, 0.95, config.Tau)
	assert.Equal(t, 1.2, config.RepetitionPenalty)
	assert.Equal(t, 3, config.BeamWidth)
	assert.Equal(t, 20, config.MaxLength)
	assert.Equal(t, 2, config.NumGroups)
	assert.Equal(t, 2, config.GroupSize)
	assert.Equal(t, 0.5, config.DiversityPenalty)
	assert.Equal(t, int64(-1), config.Seed)
}

func TestWithDefaults(t *testing.T) {
	t.Run("zero value resolves to defaults", func(t *testing.T) {
		config := Config{}.WithDefaults()

		// DiversityPenalty is the one field where zero means "off"
		// rather than "unset".
		want := DefaultConfig()
		want.DiversityPenalty = 0
		assert.Equal(t, want, config)
	})

	t.Run("set fields survive", func(t *testing.T) {
		config := Config{Method: MethodTopK, TopK: 5, Seed: 42}.WithDefaults()

		assert.Equal(t, MethodTopK, config.Method)
		assert.Equal(t, 5, config.TopK)
		assert.Equal(t, int64(42), config.Seed)
		assert.Equal(t, 1.0, config.Temperature)
	})

	t.Run("explicit zero diversity penalty survives", func(t *testing.T) {
		config := Config{DiversityPenalty: 0}.WithDefaults()
		assert.Equal(t, 0.0, config.DiversityPenalty)
	})
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		option string
	}{
		{"negative temperature", func(c *Config) { c.Temperature = -1 }, "temperature"},
		{"negative top_k", func(c *Config) { c.TopK = -1 }, "top_k"},
		{"top_p above one", func(c *Config) { c.TopP = 1.5 }, "top_p"},
		{"negative tau", func(c *Config) { c.Tau = -0.5 }, "tau"},
		{"penalty below one", func(c *Config) { c.RepetitionPenalty = 0.5 }, "repetition_penalty"},
		{"negative beam width", func(c *Config) { c.BeamWidth = -2 }, "beam_width"},
		{"negative max length", func(c *Config) { c.MaxLength = -1 }, "max_length"},
		{"negative num groups", func(c *Config) { c.NumGroups = -1 }, "num_groups"},
		{"negative group size", func(c *Config) { c.GroupSize = -1 }, "group_size"},
		{"negative diversity penalty", func(c *Config) { c.DiversityPenalty = -0.1 }, "diversity_penalty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(&config)

			err := config.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tc.option, cerr.Option)
		})
	}
}

func TestParseYAML(t *testing.T) {
	t.Run("partial document overlays defaults", func(t *testing.T) {
		config, err := ParseYAML([]byte("method: top_k\ntop_k: 10\n"))
		require.NoError(t, err)

		assert.Equal(t, MethodTopK, config.Method)
		assert.Equal(t, 10, config.TopK)
		assert.Equal(t, 0.9, config.TopP)
		assert.Equal(t, 1.2, config.RepetitionPenalty)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		config, err := ParseYAML([]byte(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		_, err := ParseYAML([]byte("method: mirostat\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("out of range value rejected", func(t *testing.T) {
		_, err := ParseYAML([]byte("top_p: 2.0\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed document rejected", func(t *testing.T) {
		_, err := ParseYAML([]byte("method: [oops\n"))
		assert.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampling.yaml")
	require.NoError(t, os.WriteFile(path, []byte("method: typical\ntau: 0.8\nseed: 7\n"), 0o644))

	config, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, MethodTypical, config.Method)
	assert.Equal(t, 0.8, config.Tau)
	assert.Equal(t, int64(7), config.Seed)
	assert.Equal(t, 3, config.BeamWidth)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Option: "top_p", Value: 1.5, Reason: "must be in (0, 1]"}

	assert.Equal(t, "invalid sampling config: top_p = 1.5 (must be in (0, 1])", err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
