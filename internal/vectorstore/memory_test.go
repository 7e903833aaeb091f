package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UpsertAndHas(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	inserted, err := s.Upsert(ctx, Document{ID: "a:1", Vector: []float32{1, 0}, Content: "first"})
	require.NoError(t, err)
	assert.True(t, inserted)

	// Second upsert with the same id is a no-op
	inserted, err = s.Upsert(ctx, Document{ID: "a:1", Vector: []float32{0, 1}, Content: "other"})
	require.NoError(t, err)
	assert.False(t, inserted)

	has, err := s.Has(ctx, "a:1")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.Has(ctx, "a:2")
	require.NoError(t, err)
	assert.False(t, has)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_UpsertValidation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Upsert(ctx, Document{Vector: []float32{1}})
	assert.Error(t, err)

	_, err = s.Upsert(ctx, Document{ID: "a:1"})
	assert.Error(t, err)
}

func TestMemoryStore_QueryOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	docs := []Document{
		{ID: "a:1", Vector: []float32{1, 0}, Content: "aligned"},
		{ID: "a:2", Vector: []float32{0, 1}, Content: "orthogonal"},
		{ID: "a:3", Vector: []float32{0.9, 0.1}, Content: "close"},
	}
	for _, d := range docs {
		_, err := s.Upsert(ctx, d)
		require.NoError(t, err)
	}

	matches, err := s.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "a:1", matches[0].ID)
	assert.Equal(t, "a:3", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestMemoryStore_QueryKLargerThanStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Upsert(ctx, Document{ID: "a:1", Vector: []float32{1, 0}})
	require.NoError(t, err)

	matches, err := s.Query(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
