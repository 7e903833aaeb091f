// Package rerank provides the cross-encoder style second retrieval stage:
// given a query and candidate texts, return the top-N most relevant first.
package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/prompts"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// maxCandidateChars bounds how much of each candidate document reaches the
// rerank prompt.
const maxCandidateChars = 400

// Reranker narrows a candidate list to the topN most relevant entries.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []vectorstore.Match, topN int) ([]vectorstore.Match, error)
}

// LLMReranker scores candidates against the query with a cheap model call.
// The model returns the candidate numbers in relevance order; unknown or
// repeated numbers are ignored and missing candidates are appended in their
// original order so the result always has topN entries when possible.
type LLMReranker struct {
	client llm.Client
	logger *zap.Logger
}

// NewLLMReranker creates a reranker backed by the cheap oracle tier.
func NewLLMReranker(client llm.Client, logger *zap.Logger) *LLMReranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMReranker{client: client, logger: logger}
}

// Rerank returns up to topN candidates, most relevant first.
func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []vectorstore.Match, topN int) ([]vectorstore.Match, error) {
	if topN <= 0 || len(candidates) == 0 {
		return nil, nil
	}
	if topN > len(candidates) {
		topN = len(candidates)
	}
	// Nothing to reorder
	if len(candidates) == 1 {
		return candidates[:1], nil
	}

	prompt := buildRerankPrompt(query, candidates, topN)

	raw, err := r.client.GenerateJSON(ctx, prompt, llm.TierCheap)
	if err != nil {
		return nil, fmt.Errorf("rerank generation failed: %w", err)
	}

	var order []int
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &order); err != nil {
		return nil, fmt.Errorf("failed to parse rerank response: %w (content: %s)", err, raw)
	}

	picked := make([]vectorstore.Match, 0, topN)
	seen := make(map[int]struct{})
	for _, n := range order {
		idx := n - 1 // prompt numbers candidates from 1
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		picked = append(picked, candidates[idx])
		if len(picked) == topN {
			return picked, nil
		}
	}

	// Model returned fewer valid numbers than topN; fill from the original
	// vector ordering.
	for idx, c := range candidates {
		if _, dup := seen[idx]; dup {
			continue
		}
		picked = append(picked, c)
		if len(picked) == topN {
			break
		}
	}

	return picked, nil
}

func buildRerankPrompt(query string, candidates []vectorstore.Match, topN int) string {
	var sb strings.Builder
	for i, c := range candidates {
		text := c.Content
		if len(text) > maxCandidateChars {
			text = text[:maxCandidateChars]
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n\n", i+1, text))
	}

	template := prompts.MustGet("matching.json", "rerank-candidates")
	return prompts.Format(template, map[string]string{
		"Query":      query,
		"Candidates": sb.String(),
		"TopN":       fmt.Sprintf("%d", topN),
	})
}
