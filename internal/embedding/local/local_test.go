package local

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder(t *testing.T) {
	ctx := context.Background()
	e := New(0)

	t.Run("default dimension", func(t *testing.T) {
		assert.Equal(t, DefaultDimension, e.Dimension())
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := e.Embed(ctx, "bilateral pneumonia with consolidation")
		require.NoError(t, err)
		b, err := e.Embed(ctx, "bilateral pneumonia with consolidation")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("unit norm", func(t *testing.T) {
		v, err := e.Embed(ctx, "clear lungs, normal heart size")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, norm(v), 1e-6)
	})

	t.Run("empty text yields the zero vector", func(t *testing.T) {
		v, err := e.Embed(ctx, "")
		require.NoError(t, err)
		assert.InDelta(t, 0.0, norm(v), 1e-9)
	})

	t.Run("shared tokens score above disjoint tokens", func(t *testing.T) {
		query, err := e.Embed(ctx, "pneumonia symptoms")
		require.NoError(t, err)
		related, err := e.Embed(ctx, "bilateral pneumonia with consolidation")
		require.NoError(t, err)
		unrelated, err := e.Embed(ctx, "clear findings bilateral")
		require.NoError(t, err)
		assert.Greater(t, dot(query, related), dot(query, unrelated))
	})

	t.Run("batch preserves order", func(t *testing.T) {
		texts := []string{"first report", "second report"}
		vecs, err := e.EmbedBatch(ctx, texts)
		require.NoError(t, err)
		require.Len(t, vecs, 2)
		want0, _ := e.Embed(ctx, texts[0])
		want1, _ := e.Embed(ctx, texts[1])
		assert.Equal(t, want0, vecs[0])
		assert.Equal(t, want1, vecs[1])
	})
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
