package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-ml/quill/internal/parallel"
	"github.com/quill-ml/quill/internal/prob"
)

func TestEach(t *testing.T) {
	ds := []prob.Distribution{
		{0.1, 0.8, 0.1},
		{0.9, 0.05, 0.05},
		{0.2, 0.2, 0.6},
	}
	config := Config{Method: MethodGreedy, RepetitionPenalty: 1, Seed: 1}

	out, err := Each(ds, nil, config, parallel.Config{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, out)
}

func TestEachWithHistories(t *testing.T) {
	ds := []prob.Distribution{
		{0.5, 0.45, 0.05},
		{0.5, 0.45, 0.05},
	}
	histories := [][]int{{0}, nil}
	config := Config{Method: MethodGreedy, RepetitionPenalty: 2.0, Seed: 1}

	out, err := Each(ds, histories, config, parallel.Config{})
	require.NoError(t, err)
	assert.Equal(t, 1, out[0], "History should penalize the leader")
	assert.Equal(t, 0, out[1], "A nil history leaves the draw unpenalized")
}

func TestEachDeterministicWithSeed(t *testing.T) {
	ds := make([]prob.Distribution, 64)
	for i := range ds {
		ds[i] = prob.Distribution{0.4, 0.3, 0.2, 0.1}
	}
	config := Config{Seed: 42}

	out1, err := Each(ds, nil, config, parallel.Config{})
	require.NoError(t, err)
	out2, err := Each(ds, nil, config, parallel.Config{})
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
}

func TestEachParallelMatchesSequential(t *testing.T) {
	ds := make([]prob.Distribution, 128)
	for i := range ds {
		ds[i] = prob.Distribution{0.25, 0.25, 0.25, 0.25}
	}
	config := Config{Seed: 7}

	seq, err := Each(ds, nil, config, parallel.Config{Enabled: false})
	require.NoError(t, err)

	par, err := Each(ds, nil, config, parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 4})
	require.NoError(t, err)

	assert.Equal(t, seq, par, "Per-draw seeding should make scheduling invisible")
}

func TestEachHistoriesMismatch(t *testing.T) {
	ds := []prob.Distribution{{0.5, 0.5}, {0.5, 0.5}}

	_, err := Each(ds, [][]int{{0}}, Config{Seed: 1}, parallel.Config{})
	assert.ErrorContains(t, err, "does not match")
}

func TestEachPropagatesDrawError(t *testing.T) {
	ds := []prob.Distribution{
		{0.5, 0.5},
		{},
	}

	_, err := Each(ds, nil, Config{Seed: 1}, parallel.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, prob.ErrInvalidDistribution)
	assert.ErrorContains(t, err, "draw 1")
}

func TestEachEmpty(t *testing.T) {
	out, err := Each(nil, nil, Config{Seed: 1}, parallel.Config{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func BenchmarkEach(b *testing.B) {
	ds := make([]prob.Distribution, 256)
	for i := range ds {
		ds[i] = prob.Uniform(1000)
	}
	config := Config{Seed: 42}

	b.Run("sequential", func(b *testing.B) {
		pcfg := parallel.Config{Enabled: false}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = Each(ds, nil, config, pcfg)
		}
	})

	b.Run("parallel", func(b *testing.B) {
		pcfg := parallel.DefaultConfig()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = Each(ds, nil, config, pcfg)
		}
	})
}
