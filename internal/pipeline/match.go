// Package pipeline orchestrates the full matching funnel: deduplicate,
// pre-filter, index, retrieve, gate, judge, and integrate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-match-agent/internal/config"
	"github.com/jonathan/job-match-agent/internal/dedup"
	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/prefilter"
	"github.com/jonathan/job-match-agent/internal/rerank"
	"github.com/jonathan/job-match-agent/internal/retrieval"
	"github.com/jonathan/job-match-agent/internal/scoring"
	"github.com/jonathan/job-match-agent/internal/types"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// ErrMatching wraps unexpected stage failures so callers can distinguish
// pipeline errors from bad input.
var ErrMatching = errors.New("matching pipeline failed")

// maxGateSummaryChars bounds the resume summary sent to the relevance gate
// when the resume has no recognizable skills section.
const maxGateSummaryChars = 1500

// MatchRequest carries one matching run's inputs. Postings may be empty to
// match against the existing index only.
type MatchRequest struct {
	ResumeText  string
	Postings    []types.Posting
	Preferences *config.Preferences
	TargetTitle string

	Deduplicate bool
	PreFilter   bool
	MultiQuery  bool
}

// Stats counts what each funnel stage let through.
type Stats struct {
	Input               int `json:"input"`
	AfterDedup          int `json:"after_dedup"`
	AfterPreFilter      int `json:"after_pre_filter"`
	Indexed             int `json:"indexed"`
	Retrieved           int `json:"retrieved"`
	PassedGate          int `json:"passed_gate"`
	Scored              int `json:"scored"`
	DroppedAfterRetries int `json:"dropped_after_retries"`
}

// Result is a completed matching run: scored matches ordered best first,
// plus per-stage counters and the run's identity for log correlation.
type Result struct {
	RunID   string              `json:"run_id"`
	Matches []types.ScoredMatch `json:"matches"`
	Stats   Stats               `json:"stats"`
}

// Matcher runs the funnel. All collaborators are construction-injected;
// the retrievers are built per run because their depth depends on the
// collection size at match time.
type Matcher struct {
	embedder llm.Embedder
	store    vectorstore.Store
	client   llm.Client
	reranker rerank.Reranker
	dedup    *dedup.Deduplicator
	gate     *scoring.RelevanceGate
	judge    *scoring.JudgeScorer
	logger   *zap.Logger
}

// NewMatcher wires a Matcher. A nil logger disables logging.
func NewMatcher(embedder llm.Embedder, store vectorstore.Store, client llm.Client, reranker rerank.Reranker, gate *scoring.RelevanceGate, judge *scoring.JudgeScorer, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		embedder: embedder,
		store:    store,
		client:   client,
		reranker: reranker,
		dedup:    dedup.New(),
		gate:     gate,
		judge:    judge,
		logger:   logger,
	}
}

// Match runs the full funnel and returns matches sorted by ranking score
// descending, ties kept in arrival order. An empty vector store yields an
// empty result and a nil error.
func (m *Matcher) Match(ctx context.Context, req MatchRequest) (*Result, error) {
	result := &Result{RunID: uuid.NewString(), Stats: Stats{Input: len(req.Postings)}}
	prefs := req.Preferences

	logger := m.logger.With(zap.String("run_id", result.RunID))

	postings := req.Postings
	if req.Deduplicate {
		postings = m.dedup.Deduplicate(postings)
	}
	result.Stats.AfterDedup = len(postings)

	if req.PreFilter && prefs != nil {
		postings = prefilter.New(prefs, logger).Filter(postings, req.TargetTitle)
	}
	result.Stats.AfterPreFilter = len(postings)

	if len(postings) > 0 {
		indexer := retrieval.NewIndexer(m.embedder, m.store, logger)
		indexed, err := indexer.Index(ctx, postings)
		if err != nil {
			return nil, fmt.Errorf("%w: indexing: %v", ErrMatching, err)
		}
		result.Stats.Indexed = indexed
	}

	size, err := m.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: counting documents: %v", ErrMatching, err)
	}
	if size == 0 {
		logger.Warn("vector store is empty, nothing to match")
		return result, nil
	}

	matches, err := m.retrieve(ctx, req, prefs, size, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieval: %v", ErrMatching, err)
	}
	result.Stats.Retrieved = len(matches)
	if len(matches) == 0 {
		return result, nil
	}

	candidates := m.resolveCandidates(matches, req.Postings)

	kept, err := m.gate.Filter(ctx, gateSummary(req.ResumeText), candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: relevance gate: %v", ErrMatching, err)
	}
	result.Stats.PassedGate = len(kept)
	if len(kept) == 0 {
		return result, nil
	}

	judged, dropped, err := m.judge.ScoreAll(ctx, req.ResumeText, kept, prefs)
	if err != nil {
		return nil, fmt.Errorf("%w: judge scoring: %v", ErrMatching, err)
	}
	result.Stats.Scored = len(judged)
	result.Stats.DroppedAfterRetries = dropped

	for _, j := range judged {
		match := types.ScoredMatch{Posting: j.Posting, Judge: j.Score}
		if ats := scoring.ComputeATSScore(req.ResumeText, j.Posting.Description, j.Posting.Requirements); ats != nil {
			integrated := scoring.Integrate(&match.Judge, ats)
			match.ATS = ats
			match.IntegratedScore = &integrated
		}
		result.Matches = append(result.Matches, match)
	}

	sort.SliceStable(result.Matches, func(i, k int) bool {
		return result.Matches[i].RankingScore() > result.Matches[k].RankingScore()
	})

	logger.Info("matching run complete",
		zap.Int("input", result.Stats.Input),
		zap.Int("retrieved", result.Stats.Retrieved),
		zap.Int("passed_gate", result.Stats.PassedGate),
		zap.Int("scored", result.Stats.Scored),
		zap.Int("dropped_after_retries", result.Stats.DroppedAfterRetries),
	)
	return result, nil
}

// retrieve builds the size-adaptive two-stage retriever, optionally wrapped
// in multi-query expansion, and runs it.
func (m *Matcher) retrieve(ctx context.Context, req MatchRequest, prefs *config.Preferences, size int, logger *zap.Logger) ([]vectorstore.Match, error) {
	initialK, finalK := retrieval.Depth(size, prefs)
	query := retrieval.BuildQuery(req.ResumeText, prefs, req.TargetTitle)

	base := retrieval.NewTwoStageRetriever(m.embedder, m.store, m.reranker, initialK, finalK, logger)
	if req.MultiQuery || (prefs != nil && prefs.MultiQuery) {
		return retrieval.NewMultiQueryRetriever(base, m.client, logger).Retrieve(ctx, query)
	}
	return base.Retrieve(ctx, query)
}

// resolveCandidates maps retrieved matches back to full postings. A match
// whose posting is not in the request pool (indexed on an earlier run) is
// reconstructed from the stored metadata and content.
func (m *Matcher) resolveCandidates(matches []vectorstore.Match, pool []types.Posting) []types.Posting {
	byID := make(map[string]*types.Posting, len(pool))
	for i := range pool {
		byID[pool[i].ID()] = &pool[i]
	}

	candidates := make([]types.Posting, 0, len(matches))
	for _, match := range matches {
		if p, ok := byID[match.ID]; ok {
			candidates = append(candidates, *p)
			continue
		}
		candidates = append(candidates, postingFromMatch(match))
	}
	return candidates
}

func postingFromMatch(match vectorstore.Match) types.Posting {
	meta := func(key, fallback string) string {
		if v, ok := match.Metadata[key]; ok && v != "" {
			return v
		}
		return fallback
	}
	return types.Posting{
		ExternalID:    meta(retrieval.MetaJobID, "unknown"),
		Source:        meta(retrieval.MetaSource, "unknown"),
		Title:         meta(retrieval.MetaTitle, "Unknown"),
		Company:       meta(retrieval.MetaCompany, "Unknown"),
		Location:      meta(retrieval.MetaLocation, ""),
		WorkplaceType: meta(retrieval.MetaWorkplaceType, ""),
		Description:   match.Content,
	}
}

// gateSummary prefers the resume's skills section for the cheap screening
// call, falling back to a truncated resume.
func gateSummary(resumeText string) string {
	if skills := retrieval.ExtractSkillsExcerpt(resumeText); skills != "" {
		return skills
	}
	if len(resumeText) > maxGateSummaryChars {
		return resumeText[:maxGateSummaryChars]
	}
	return resumeText
}
