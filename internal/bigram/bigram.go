// Package bigram builds small bigram language models over tiktoken token
// IDs. Transition counts from a corpus stand in for model output
// distributions, which is enough to demonstrate sampling and search end
// to end without a real inference backend.
package bigram

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkoukk/tiktoken-go"

	"github.com/quill-ml/quill/internal/prob"
)

// Model holds bigram transition counts. It implements the sampling Model
// interface via Next.
type Model struct {
	enc     *tiktoken.Tiktoken
	counts  map[int]map[int]int
	unigram map[int]int
	vocab   int
	tokens  int
}

// New counts every adjacent pair in tokens. enc may be nil when Encode
// and Decode are not needed.
func New(enc *tiktoken.Tiktoken, tokens []int) (*Model, error) {
	if len(tokens) < 2 {
		return nil, fmt.Errorf("corpus too small: %d tokens", len(tokens))
	}

	m := &Model{
		enc:     enc,
		counts:  make(map[int]map[int]int),
		unigram: make(map[int]int),
		tokens:  len(tokens),
	}

	for i, tok := range tokens {
		m.unigram[tok]++
		if tok >= m.vocab {
			m.vocab = tok + 1
		}
		if i+1 < len(tokens) {
			next := tokens[i+1]
			if m.counts[tok] == nil {
				m.counts[tok] = make(map[int]int)
			}
			m.counts[tok][next]++
		}
	}

	return m, nil
}

// FromText tokenizes text with the named tiktoken encoding and builds a
// model from it.
func FromText(text, encoding string) (*Model, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("could not load encoding %q: %w", encoding, err)
	}
	return New(enc, enc.Encode(text, nil, nil))
}

// FromFile reads a corpus file and builds a model from its text.
func FromFile(path, encoding string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read corpus: %w", err)
	}
	return FromText(string(data), encoding)
}

// Next returns the transition distribution after the last prefix token,
// over the full observed vocabulary. Unseen tokens and an empty prefix
// fall back to the corpus unigram distribution.
func (m *Model) Next(prefix []int) prob.Distribution {
	var src map[int]int
	if len(prefix) > 0 {
		src = m.counts[prefix[len(prefix)-1]]
	}
	if len(src) == 0 {
		src = m.unigram
	}

	total := 0
	for _, n := range src {
		total += n
	}

	d := make(prob.Distribution, m.vocab)
	for tok, n := range src {
		d[tok] = float64(n) / float64(total)
	}
	return d
}

// Successors returns at most limit follow-up tokens of last, most likely
// first, with their renormalized transition probabilities. Ties break
// toward the smaller token ID so searches stay reproducible. Unseen
// tokens fall back to the unigram distribution; limit <= 0 means no cap.
func (m *Model) Successors(last, limit int) ([]int, prob.Distribution) {
	src := m.counts[last]
	if len(src) == 0 {
		src = m.unigram
	}

	type pair struct {
		tok int
		n   int
	}
	pairs := make([]pair, 0, len(src))
	for tok, n := range src {
		pairs = append(pairs, pair{tok, n})
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].n != pairs[b].n {
			return pairs[a].n > pairs[b].n
		}
		return pairs[a].tok < pairs[b].tok
	})

	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}

	total := 0
	for _, p := range pairs {
		total += p.n
	}

	toks := make([]int, len(pairs))
	probs := make(prob.Distribution, len(pairs))
	for i, p := range pairs {
		toks[i] = p.tok
		probs[i] = float64(p.n) / float64(total)
	}
	return toks, probs
}

// Encode converts text to token IDs. It requires a model built with an
// encoding.
func (m *Model) Encode(text string) []int {
	return m.enc.Encode(text, nil, nil)
}

// Decode converts token IDs back to text. It requires a model built with
// an encoding.
func (m *Model) Decode(tokens []int) string {
	return m.enc.Decode(tokens)
}

// VocabSize returns one past the largest token ID seen in the corpus.
func (m *Model) VocabSize() int {
	return m.vocab
}

// Tokens returns the corpus length in tokens.
func (m *Model) Tokens() int {
	return m.tokens
}
