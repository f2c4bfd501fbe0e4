package bigram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-ml/quill/internal/prob"
	"github.com/quill-ml/quill/internal/sample"
)

var _ sample.Model = (*Model)(nil)

func TestNew(t *testing.T) {
	m, err := New(nil, []int{1, 2, 1, 3, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, 6, m.Tokens())
	assert.Equal(t, 4, m.VocabSize())
}

func TestNewTooSmall(t *testing.T) {
	_, err := New(nil, []int{5})
	assert.ErrorContains(t, err, "too small")
}

func TestNext(t *testing.T) {
	m, err := New(nil, []int{1, 2, 1, 3, 1, 2})
	require.NoError(t, err)

	t.Run("seen token", func(t *testing.T) {
		d := m.Next([]int{0, 1})
		require.Len(t, d, 4)
		assert.InDelta(t, 2.0/3.0, d[2], 1e-9)
		assert.InDelta(t, 1.0/3.0, d[3], 1e-9)
		assert.Equal(t, 0.0, d[1])
	})

	t.Run("empty prefix falls back to unigram", func(t *testing.T) {
		d := m.Next(nil)
		assert.InDelta(t, 3.0/6.0, d[1], 1e-9)
		assert.InDelta(t, 2.0/6.0, d[2], 1e-9)
		assert.InDelta(t, 1.0/6.0, d[3], 1e-9)
	})

	t.Run("unseen token falls back to unigram", func(t *testing.T) {
		d := m.Next([]int{9})
		assert.InDelta(t, 3.0/6.0, d[1], 1e-9)
	})

	t.Run("distributions are drawable", func(t *testing.T) {
		require.NoError(t, prob.Validate(m.Next([]int{1})))
	})
}

func TestSuccessors(t *testing.T) {
	m, err := New(nil, []int{1, 2, 1, 3, 1, 2})
	require.NoError(t, err)

	t.Run("sorted by count", func(t *testing.T) {
		toks, probs := m.Successors(1, 0)
		assert.Equal(t, []int{2, 3}, toks)
		assert.InDelta(t, 2.0/3.0, probs[0], 1e-9)
		assert.InDelta(t, 1.0/3.0, probs[1], 1e-9)
	})

	t.Run("limit renormalizes the kept entries", func(t *testing.T) {
		toks, probs := m.Successors(1, 1)
		assert.Equal(t, []int{2}, toks)
		assert.InDelta(t, 1.0, probs[0], 1e-9)
	})

	t.Run("unseen token falls back to unigram", func(t *testing.T) {
		toks, probs := m.Successors(9, 2)
		assert.Equal(t, []int{1, 2}, toks)
		assert.InDelta(t, 3.0/5.0, probs[0], 1e-9)
		assert.InDelta(t, 2.0/5.0, probs[1], 1e-9)
	})

	t.Run("equal counts break toward the smaller token", func(t *testing.T) {
		flat, err := New(nil, []int{7, 4, 7, 2, 7, 9, 7})
		require.NoError(t, err)

		toks, _ := flat.Successors(7, 0)
		assert.Equal(t, []int{2, 4, 9}, toks)
	})
}
