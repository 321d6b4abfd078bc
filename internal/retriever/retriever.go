package retriever

import (
	"context"

	"taxrag/internal/domain"
	"taxrag/internal/vectorstore"
)

// Retriever performs top-k retrieval against a vector index with a fixed
// configured k. It exists to decouple answer generation from index
// implementation details and carries no re-ranking logic of its own.
type Retriever struct {
	index vectorstore.Index
	topK  int
}

// New creates a retriever over index returning up to topK chunks per
// query. Non-positive topK falls back to 5.
func New(index vectorstore.Index, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{index: index, topK: topK}
}

// Retrieve returns the chunks most relevant to query, ranked by
// decreasing similarity.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.ScoredChunk, error) {
	return r.index.Search(ctx, query, r.topK)
}
