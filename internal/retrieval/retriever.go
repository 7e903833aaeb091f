package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/rerank"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// TwoStageRetriever combines vector nearest-neighbor search with
// cross-encoder style reranking: stage one pulls initialK candidates by
// cosine similarity, stage two narrows them to finalK, most relevant first.
type TwoStageRetriever struct {
	embedder llm.Embedder
	store    vectorstore.Store
	reranker rerank.Reranker
	initialK int
	finalK   int
	logger   *zap.Logger
}

// NewTwoStageRetriever creates a retriever with the given depths.
func NewTwoStageRetriever(embedder llm.Embedder, store vectorstore.Store, reranker rerank.Reranker, initialK, finalK int, logger *zap.Logger) *TwoStageRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TwoStageRetriever{
		embedder: embedder,
		store:    store,
		reranker: reranker,
		initialK: initialK,
		finalK:   finalK,
		logger:   logger,
	}
}

// Retrieve runs the two-stage search for a query. A rerank failure falls
// back to the vector ordering truncated to finalK rather than failing the
// stage.
func (r *TwoStageRetriever) Retrieve(ctx context.Context, query string) ([]vectorstore.Match, error) {
	vector, err := r.embedder.Embed(ctx, query, llm.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	candidates, err := r.store.Query(ctx, vector, r.initialK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	reranked, err := r.reranker.Rerank(ctx, query, candidates, r.finalK)
	if err != nil {
		r.logger.Warn("reranking failed, using vector order",
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		if r.finalK < len(candidates) {
			return candidates[:r.finalK], nil
		}
		return candidates, nil
	}

	r.logger.Debug("two-stage retrieval complete",
		zap.Int("initial", len(candidates)),
		zap.Int("final", len(reranked)),
	)
	return reranked, nil
}
