package embedding

import "context"

// Embedder converts text into fixed-length numeric vectors. The same text
// with the same configuration must produce the same vector, and every
// vector from one embedder has exactly Dimension components.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}
