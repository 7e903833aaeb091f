package retrieval

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/prompts"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// defaultNumQueries is how many alternative phrasings the cheap model is
// asked for.
const defaultNumQueries = 3

// MultiQueryRetriever broadens retrieval coverage by generating alternative
// query phrasings with a cheap model call, running the two-stage search for
// each, and merging results by document id, first seen wins.
//
// Both expansion parsing and per-query retrieval fail open: a bad expansion
// or one failed query never fails the whole stage.
type MultiQueryRetriever struct {
	retriever  *TwoStageRetriever
	client     llm.Client
	numQueries int
	logger     *zap.Logger
}

// NewMultiQueryRetriever creates a multi-query retriever around a base
// two-stage retriever.
func NewMultiQueryRetriever(retriever *TwoStageRetriever, client llm.Client, logger *zap.Logger) *MultiQueryRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MultiQueryRetriever{
		retriever:  retriever,
		client:     client,
		numQueries: defaultNumQueries,
		logger:     logger,
	}
}

// GenerateQueries asks the cheap tier for alternative phrasings of the
// original query. Unparseable output returns an empty list, never an error.
func (m *MultiQueryRetriever) GenerateQueries(ctx context.Context, originalQuery string) []string {
	template := prompts.MustGet("matching.json", "multi-query")
	prompt := prompts.Format(template, map[string]string{
		"Query": originalQuery,
		"N":     fmt.Sprintf("%d", m.numQueries),
	})

	raw, err := m.client.GenerateJSON(ctx, prompt, llm.TierCheap)
	if err != nil {
		m.logger.Warn("query expansion failed", zap.Error(err))
		return nil
	}

	var queries []string
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &queries); err != nil {
		m.logger.Warn("failed to parse expanded queries", zap.Error(err))
		return nil
	}

	if len(queries) > m.numQueries {
		queries = queries[:m.numQueries]
	}
	return queries
}

// Retrieve runs the two-stage search for the original query and every
// alternative, deduplicating matches across queries.
func (m *MultiQueryRetriever) Retrieve(ctx context.Context, query string) ([]vectorstore.Match, error) {
	allQueries := append([]string{query}, m.GenerateQueries(ctx, query)...)

	seen := make(map[string]struct{})
	var merged []vectorstore.Match

	for _, q := range allQueries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matches, err := m.retriever.Retrieve(ctx, q)
		if err != nil {
			m.logger.Warn("retrieval failed for query, skipping",
				zap.String("query", truncate(q, 50)),
				zap.Error(err),
			)
			continue
		}
		for _, match := range matches {
			if _, dup := seen[match.ID]; dup {
				continue
			}
			seen[match.ID] = struct{}{}
			merged = append(merged, match)
		}
	}

	m.logger.Info("multi-query retrieval merged",
		zap.Int("queries", len(allQueries)),
		zap.Int("unique_matches", len(merged)),
	)
	return merged, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
