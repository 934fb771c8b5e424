package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(64)

	a, err := e.Embed(context.Background(), "introduction to retrieval")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "introduction to retrieval")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestMockEmbedderDistinctTexts(t *testing.T) {
	e := NewMockEmbedder(64)

	a, err := e.Embed(context.Background(), "vector databases")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "cooking pasta")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Less(t, Cosine(a, b), 0.999)
}

func TestMockEmbedderBatchMatchesSingle(t *testing.T) {
	e := NewMockEmbedder(32)

	single, err := e.Embed(context.Background(), "alpha")
	require.NoError(t, err)

	batch, err := e.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, single, batch[0])
}

func TestNormalizeUnitLength(t *testing.T) {
	v := Normalize([]float32{3, 4})

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestNormalizeZeroVector(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestCosine(t *testing.T) {
	a := Normalize([]float32{1, 0})
	b := Normalize([]float32{0, 1})
	c := Normalize([]float32{1, 0})

	assert.InDelta(t, 1.0, Cosine(a, c), 1e-6)
	assert.InDelta(t, 0.0, Cosine(a, b), 1e-6)
}

func TestCosineMismatchedDimensions(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 0}, []float32{1}))
}
