package sample

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-ml/quill/internal/prob"
)

func TestSampleRouting(t *testing.T) {
	d := prob.Distribution{0.1, 0.7, 0.2}

	t.Run("greedy", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 50; i++ {
			idx, err := Sample(d, nil, Config{Method: MethodGreedy}, rng)
			require.NoError(t, err)
			assert.Equal(t, 1, idx)
		}
	})

	t.Run("top_k narrows the support", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 50; i++ {
			idx, err := Sample(d, nil, Config{Method: MethodTopK, TopK: 1}, rng)
			require.NoError(t, err)
			assert.Equal(t, 1, idx)
		}
	})

	t.Run("unset method falls back to top_p", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		nucleus := prob.Distribution{0.4, 0.35, 0.25}
		for i := 0; i < 100; i++ {
			idx, err := Sample(nucleus, nil, Config{TopP: 0.5}, rng)
			require.NoError(t, err)
			assert.NotEqual(t, 2, idx, "Fallback should behave like top_p")
		}
	})

	t.Run("unrecognized method falls back to top_p", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		nucleus := prob.Distribution{0.4, 0.35, 0.25}
		for i := 0; i < 100; i++ {
			idx, err := Sample(nucleus, nil, Config{Method: "mirostat", TopP: 0.5}, rng)
			require.NoError(t, err)
			assert.NotEqual(t, 2, idx)
		}
	})
}

func TestSampleAppliesRepetitionPenalty(t *testing.T) {
	d := prob.Distribution{0.5, 0.45, 0.05}
	config := Config{Method: MethodGreedy, RepetitionPenalty: 2.0}

	rng := rand.New(rand.NewSource(42))

	idx, err := Sample(d, nil, config, rng)
	require.NoError(t, err)
	assert.Equal(t, 0, idx, "Without history the argmax wins")

	idx, err = Sample(d, []int{0}, config, rng)
	require.NoError(t, err)
	assert.Equal(t, 1, idx, "Penalizing index 0 should shift the argmax")
}

func TestSampleDefaultPenaltyActive(t *testing.T) {
	// The default repetition penalty of 1.2 already demotes a narrow lead.
	d := prob.Distribution{0.5, 0.45, 0.05}
	rng := rand.New(rand.NewSource(42))

	idx, err := Sample(d, []int{0}, Config{Method: MethodGreedy}, rng)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestCombinedSampling(t *testing.T) {
	// Penalty then top-k: index 0 drops out of the top two entirely.
	d := prob.Distribution{0.3, 0.25, 0.2, 0.15, 0.1}
	config := Config{Method: MethodTopK, TopK: 2, RepetitionPenalty: 3.0}
	rng := rand.New(rand.NewSource(42))

	counts := make(map[int]int)
	for i := 0; i < 100; i++ {
		idx, err := Sample(d, []int{0}, config, rng)
		require.NoError(t, err)
		counts[idx]++
	}

	assert.Equal(t, 0, counts[0], "Penalized index should fall outside top-k")
	assert.Equal(t, 100, counts[1]+counts[2])
}

func TestSampleInvalidInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	_, err := Sample(prob.Distribution{}, nil, Config{}, rng)
	assert.ErrorIs(t, err, prob.ErrInvalidDistribution)

	_, err = Sample(prob.Distribution{0.5, 0.5}, nil, Config{Temperature: -1}, rng)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewSamplerInvalidConfig(t *testing.T) {
	s, err := NewSampler(Config{TopP: 2.0})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSamplerConfigResolved(t *testing.T) {
	s, err := NewSampler(Config{})
	require.NoError(t, err)
	assert.Equal(t, Config{}.WithDefaults(), s.Config())
	assert.Equal(t, MethodTopP, s.Config().Method)
}

func TestDeterministicWithSeed(t *testing.T) {
	d := make(prob.Distribution, 100)
	for i := range d {
		d[i] = float64(i + 1)
	}
	require.NoError(t, prob.Renormalize(d))

	config := Config{Method: MethodTopK, TopK: 10, Seed: 12345}

	s1, err := NewSampler(config)
	require.NoError(t, err)
	s2, err := NewSampler(config)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		idx1, err := s1.Sample(d, nil)
		require.NoError(t, err)
		idx2, err := s2.Sample(d, nil)
		require.NoError(t, err)
		assert.Equal(t, idx1, idx2, "Same seed should give the same draw at step %d", i)
	}
}

func BenchmarkSample(b *testing.B) {
	d := make(prob.Distribution, 50000)
	for i := range d {
		d[i] = 1 / float64(len(d))
	}
	history := []int{1, 5, 9, 1, 3}
	config := DefaultConfig()
	rng := rand.New(rand.NewSource(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Sample(d, history, config, rng)
	}
}
