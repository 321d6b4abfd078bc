package vectorstore

import (
	"context"

	"taxrag/internal/domain"
)

// Index persists chunk vectors and supports nearest-neighbor search.
// Implementations embed chunk and query text through their configured
// embedder, so write and read paths always share one dimensionality and
// one distance metric.
type Index interface {
	// Add embeds and stores the chunks, returning the assigned ids.
	// If embedding fails partway, nothing is committed.
	Add(ctx context.Context, chunks []domain.Chunk) ([]string, error)

	// Search returns up to k chunks ordered by decreasing similarity,
	// ties broken by insertion order. An empty index yields an empty
	// result, not an error.
	Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)

	// Clear removes the entire collection and leaves an empty one ready
	// for use. Safe to call on an already-empty index.
	Clear(ctx context.Context) error

	// Count returns the stored-vector count, or 0 with a logged warning
	// when the backing store cannot be reached. Display use only.
	Count(ctx context.Context) int
}
