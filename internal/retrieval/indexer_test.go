package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-match-agent/internal/types"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

func TestIndexer_Index(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	embedder := &stubEmbedder{}
	ix := NewIndexer(embedder, store, nil)

	postings := []types.Posting{
		{ExternalID: "1", Source: "linkedin", Title: "Backend Engineer", Company: "Acme", Description: "Go services."},
		{ExternalID: "2", Source: "linkedin", Title: "Data Engineer", Company: "Initech", Description: "Pipelines."},
	}

	inserted, err := ix.Index(context.Background(), postings)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexer_ReindexSkipsExistingWithoutEmbedding(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	embedder := &stubEmbedder{}
	ix := NewIndexer(embedder, store, nil)

	postings := []types.Posting{
		{ExternalID: "1", Source: "linkedin", Title: "Backend Engineer", Company: "Acme", Description: "Go services."},
	}

	_, err := ix.Index(context.Background(), postings)
	require.NoError(t, err)
	callsAfterFirst := embedder.calls

	inserted, err := ix.Index(context.Background(), postings)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Equal(t, callsAfterFirst, embedder.calls, "existing postings must not be re-embedded")
}

func TestIndexer_EmbedFailureStopsWithError(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	ix := NewIndexer(&stubEmbedder{fail: true}, store, nil)

	postings := []types.Posting{
		{ExternalID: "1", Source: "linkedin", Title: "Backend Engineer", Company: "Acme", Description: "Go services."},
	}

	_, err := ix.Index(context.Background(), postings)
	assert.Error(t, err)
}
