package scoring

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/prompts"
	"github.com/jonathan/job-match-agent/internal/types"
)

const (
	// defaultGateThreshold is the minimum relevance to survive the gate.
	defaultGateThreshold = 4
	// defaultGateWorkers bounds concurrent cheap-tier screening calls.
	defaultGateWorkers = 5
	// maxGateDescriptionChars bounds the posting text sent to the gate.
	maxGateDescriptionChars = 500
)

// gateResponse is the cheap model's screening verdict.
type gateResponse struct {
	Relevance int    `json:"relevance"`
	Reason    string `json:"reason"`
}

// RelevanceGate screens candidates with a cheap model call before the
// expensive judge runs. The gate fails open: an unparseable or failed call
// scores the candidate at exactly the threshold, which passes.
type RelevanceGate struct {
	client    llm.Client
	threshold int
	workers   int
	logger    *zap.Logger
}

// NewRelevanceGate creates a gate with the default threshold and worker
// count. A nil logger disables logging.
func NewRelevanceGate(client llm.Client, logger *zap.Logger) *RelevanceGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelevanceGate{
		client:    client,
		threshold: defaultGateThreshold,
		workers:   defaultGateWorkers,
		logger:    logger,
	}
}

// SetWorkers overrides the gate's concurrency bound. Values below 1 are
// ignored.
func (g *RelevanceGate) SetWorkers(n int) {
	if n >= 1 {
		g.workers = n
	}
}

// SetThreshold overrides the minimum passing relevance.
func (g *RelevanceGate) SetThreshold(n int) {
	g.threshold = n
}

// Filter screens the postings concurrently and returns the survivors in
// their original order. Only context cancellation fails the stage; every
// other failure admits the candidate.
func (g *RelevanceGate) Filter(ctx context.Context, resumeSummary string, postings []types.Posting) ([]types.Posting, error) {
	if len(postings) == 0 {
		return nil, nil
	}

	relevances := make([]int, len(postings))

	eg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, g.workers)

	for i := range postings {
		i := i
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}
			relevances[i] = g.screen(ctx, resumeSummary, &postings[i])
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var kept []types.Posting
	for i := range postings {
		if relevances[i] >= g.threshold {
			kept = append(kept, postings[i])
		}
	}

	g.logger.Info("relevance gate complete",
		zap.Int("screened", len(postings)),
		zap.Int("passed", len(kept)),
		zap.Int("threshold", g.threshold),
	)
	return kept, nil
}

// screen rates one posting. Failures return the threshold itself so the
// candidate is admitted rather than silently lost.
func (g *RelevanceGate) screen(ctx context.Context, resumeSummary string, p *types.Posting) int {
	template := prompts.MustGet("matching.json", "quick-relevance")
	prompt := prompts.Format(template, map[string]string{
		"ResumeSummary": resumeSummary,
		"Title":         p.Title,
		"Company":       p.Company,
		"Description":   truncate(p.Description, maxGateDescriptionChars),
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierCheap)
	if err != nil {
		g.logger.Warn("gate call failed, admitting candidate",
			zap.String("posting", p.ID()),
			zap.Error(err),
		)
		return g.threshold
	}

	var resp gateResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &resp); err != nil {
		g.logger.Warn("gate response unparseable, admitting candidate",
			zap.String("posting", p.ID()),
			zap.Error(err),
		)
		return g.threshold
	}

	g.logger.Debug("gate verdict",
		zap.String("posting", p.ID()),
		zap.Int("relevance", resp.Relevance),
		zap.String("reason", resp.Reason),
	)
	return resp.Relevance
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
