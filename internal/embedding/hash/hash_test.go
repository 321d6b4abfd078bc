package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Deterministic(t *testing.T) {
	e := NewEmbedder(128)
	ctx := context.Background()

	a, err := e.EmbedOne(ctx, "tax liability reported after the audit")
	require.NoError(t, err)
	b, err := e.EmbedOne(ctx, "tax liability reported after the audit")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbedder_FixedDimension(t *testing.T) {
	e := NewEmbedder(64)
	ctx := context.Background()

	vecs, err := e.Embed(ctx, []string{"first text", "a much longer second text about tax reserves and audits", ""})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, 64)
	}
	assert.Equal(t, 64, e.Dimension())
}

func TestEmbedder_L2Normalized(t *testing.T) {
	e := NewEmbedder(128)
	vec, err := e.EmbedOne(context.Background(), "transfer pricing exposure in two jurisdictions")
	require.NoError(t, err)

	norm := 0.0
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbedder_EmbedMatchesEmbedOne(t *testing.T) {
	e := NewEmbedder(128)
	ctx := context.Background()

	batch, err := e.Embed(ctx, []string{"alpha exposure", "beta reserve"})
	require.NoError(t, err)
	one, err := e.EmbedOne(ctx, "beta reserve")
	require.NoError(t, err)
	assert.Equal(t, one, batch[1])
}

func TestEmbedder_EmptyTextZeroVector(t *testing.T) {
	e := NewEmbedder(32)
	vec, err := e.EmbedOne(context.Background(), "")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedder_SimilarTextsScoreHigher(t *testing.T) {
	e := NewEmbedder(256)
	ctx := context.Background()

	q, err := e.EmbedOne(ctx, "tax liability audit")
	require.NoError(t, err)
	related, err := e.EmbedOne(ctx, "the audit confirmed a tax liability")
	require.NoError(t, err)
	unrelated, err := e.EmbedOne(ctx, "weather forecast sunny tomorrow")
	require.NoError(t, err)

	assert.Greater(t, dot(q, related), dot(q, unrelated))
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
