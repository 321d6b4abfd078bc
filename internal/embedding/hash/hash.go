package hash

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"taxrag/internal/domain"
)

// Embedder is a local feature-hashing embedder: tokens are hashed into a
// fixed number of buckets, weighted by term frequency and L2-normalized.
// It needs no model, no network and no corpus preparation, which makes it
// fully deterministic for a given dimension.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder with the given vector dimension.
// Non-positive dimensions fall back to 256.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 256
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hash" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes embeddings for all texts in order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, &domain.EmbeddingError{Input: t, Err: err}
		}
		out[i] = e.vectorize(t)
	}
	return out, nil
}

// EmbedOne computes the embedding for a single text.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.EmbeddingError{Input: text, Err: err}
	}
	return e.vectorize(text), nil
}

func (e *Embedder) vectorize(text string) []float32 {
	vec := make([]float32, e.dimension)
	total := 0
	for _, tok := range e.tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimension]++
		total++
	}
	if total == 0 {
		return vec
	}
	// Term frequency, then L2 normalize.
	norm := 0.0
	for i := range vec {
		vec[i] /= float32(total)
		norm += float64(vec[i]) * float64(vec[i])
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
