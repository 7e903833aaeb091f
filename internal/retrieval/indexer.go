package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/types"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// Indexer embeds and upserts postings into the vector store. Re-indexing
// is idempotent: postings already present are skipped before any embedding
// call is made.
type Indexer struct {
	embedder llm.Embedder
	store    vectorstore.Store
	logger   *zap.Logger
}

// NewIndexer creates an Indexer. A nil logger disables logging.
func NewIndexer(embedder llm.Embedder, store vectorstore.Store, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{embedder: embedder, store: store, logger: logger}
}

// Index upserts the given postings and returns the count of newly inserted
// documents.
func (ix *Indexer) Index(ctx context.Context, postings []types.Posting) (int, error) {
	inserted := 0

	for i := range postings {
		p := &postings[i]

		has, err := ix.store.Has(ctx, p.ID())
		if err != nil {
			return inserted, fmt.Errorf("failed to check existing document %s: %w", p.ID(), err)
		}
		if has {
			continue
		}

		doc := BuildDocument(p)
		vector, err := ix.embedder.Embed(ctx, doc.Content, llm.TaskRetrievalDocument)
		if err != nil {
			return inserted, fmt.Errorf("failed to embed posting %s: %w", p.ID(), err)
		}
		doc.Vector = vector

		isNew, err := ix.store.Upsert(ctx, doc)
		if err != nil {
			return inserted, fmt.Errorf("failed to upsert posting %s: %w", p.ID(), err)
		}
		if isNew {
			inserted++
		}
	}

	ix.logger.Info("indexed postings",
		zap.Int("total", len(postings)),
		zap.Int("new", inserted),
	)
	return inserted, nil
}
