package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"taxrag/internal/domain"
	"taxrag/internal/embedding"
)

// Index is an in-memory vector index using brute-force cosine similarity.
// Vectors are kept in insertion order, which also serves as the search
// tie-breaker.
type Index struct {
	mu       sync.RWMutex
	embedder embedding.Embedder
	ids      []string
	vectors  [][]float32
	chunks   []domain.Chunk
}

// NewIndex creates an empty in-memory index over the given embedder.
func NewIndex(embedder embedding.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Add embeds all chunk texts in one batch and appends them. A failed
// embedding rejects the whole batch; nothing is stored.
func (s *Index) Add(ctx context.Context, chunks []domain.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, &domain.IndexWriteError{Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.vectors) > 0 && len(vectors[0]) != len(s.vectors[0]) {
		return nil, &domain.IndexWriteError{Err: errors.New("vector dimension mismatch")}
	}
	ids := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = uuid.NewString()
	}
	s.ids = append(s.ids, ids...)
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return ids, nil
}

// Search embeds the query and scores every stored vector.
func (s *Index) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, &domain.IndexReadError{Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.vectors) == 0 {
		return nil, nil
	}
	scores := make([]float32, len(s.vectors))
	for i := range s.vectors {
		scores[i] = cosine(s.vectors[i], vec)
	}
	idxs := make([]int, len(scores))
	for i := range idxs {
		idxs[i] = i
	}
	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if k > len(idxs) {
		k = len(idxs)
	}
	results := make([]domain.ScoredChunk, 0, k)
	for i := 0; i < k; i++ {
		j := idxs[i]
		results = append(results, domain.ScoredChunk{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

// Clear drops all stored vectors. Idempotent.
func (s *Index) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.vectors = nil
	s.chunks = nil
	return nil
}

// Count returns the number of stored vectors.
func (s *Index) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
