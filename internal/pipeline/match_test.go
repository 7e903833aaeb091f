package pipeline

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-match-agent/internal/config"
	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/scoring"
	"github.com/jonathan/job-match-agent/internal/types"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// stubEmbedder maps text deterministically onto a small vector.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string, _ llm.TaskType) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	vec := make([]float32, 4)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000 + 0.001
	}
	return vec, nil
}

func (stubEmbedder) Close() error { return nil }

// scriptedClient answers by prompt shape: rerank, gate, and judge prompts
// each get a canned response keyed off posting titles found in the prompt.
type scriptedClient struct {
	relevance map[string]string
	judge     map[string]string
}

func (c *scriptedClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.GenerateJSON(ctx, prompt, tier)
}

func (c *scriptedClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	switch {
	case strings.Contains(prompt, "reranking job postings"):
		return "[1, 2]", nil
	case strings.Contains(prompt, "screening job postings"):
		for title, resp := range c.relevance {
			if strings.Contains(prompt, title) {
				return resp, nil
			}
		}
		return `{"relevance": 5, "reason": "default"}`, nil
	default:
		for title, resp := range c.judge {
			if strings.Contains(prompt, title) {
				return resp, nil
			}
		}
		return judgeJSON(5), nil
	}
}

func (c *scriptedClient) GetModel(llm.ModelTier) string { return "stub-model" }

func (c *scriptedClient) Close() error { return nil }

func judgeJSON(skills int) string {
	return `{
		"breakdown": {"skills": ` + itoa(skills) + `, "experience": 5, "education": 5, "location": 5, "salary": 5},
		"reasoning": "canned evaluation",
		"strengths": ["Go"],
		"missing_skills": [],
		"interview_talking_points": [],
		"requirements_met_ratio": 0.5
	}`
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func testPostings() []types.Posting {
	return []types.Posting{
		{ExternalID: "1", Source: "linkedin", Title: "Backend Engineer", Company: "Acme",
			Description: "Build Go services with PostgreSQL."},
		{ExternalID: "2", Source: "linkedin", Title: "Florist", Company: "Petals",
			Description: "Arrange flowers all day."},
	}
}

func newTestMatcher(client llm.Client) *Matcher {
	store := vectorstore.NewMemoryStore()
	gate := scoring.NewRelevanceGate(client, nil)
	judge := scoring.NewJudgeScorer(client, config.DefaultWeights(), nil)
	return NewMatcher(stubEmbedder{}, store, client, passthroughReranker{}, gate, judge, nil)
}

// passthroughReranker keeps vector order, truncated to topN.
type passthroughReranker struct{}

func (passthroughReranker) Rerank(_ context.Context, _ string, candidates []vectorstore.Match, topN int) ([]vectorstore.Match, error) {
	if topN < len(candidates) {
		return candidates[:topN], nil
	}
	return candidates, nil
}

func TestMatcher_EndToEnd(t *testing.T) {
	client := &scriptedClient{
		relevance: map[string]string{
			"Backend Engineer": `{"relevance": 8, "reason": "strong fit"}`,
			"Florist":          `{"relevance": 2, "reason": "unrelated"}`,
		},
	}
	m := newTestMatcher(client)

	result, err := m.Match(context.Background(), MatchRequest{
		ResumeText:  "Skills:\nGo, PostgreSQL, Docker",
		Postings:    testPostings(),
		Preferences: config.DefaultPreferences(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Stats.Input)
	assert.Equal(t, 2, result.Stats.Indexed)
	assert.Equal(t, 2, result.Stats.Retrieved)
	assert.Equal(t, 1, result.Stats.PassedGate)
	assert.Equal(t, 1, result.Stats.Scored)
	assert.Zero(t, result.Stats.DroppedAfterRetries)

	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, "Backend Engineer", match.Posting.Title)
	require.NotNil(t, match.ATS)
	require.NotNil(t, match.IntegratedScore)
	assert.GreaterOrEqual(t, *match.IntegratedScore, 1.0)
}

func TestMatcher_EmptyStore(t *testing.T) {
	m := newTestMatcher(&scriptedClient{})

	result, err := m.Match(context.Background(), MatchRequest{ResumeText: "resume"})
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	assert.Zero(t, result.Stats.Retrieved)
}

func TestMatcher_RanksByIntegratedScore(t *testing.T) {
	client := &scriptedClient{
		judge: map[string]string{
			"Backend Engineer": judgeJSON(9),
			"Florist":          judgeJSON(2),
		},
	}
	m := newTestMatcher(client)

	result, err := m.Match(context.Background(), MatchRequest{
		ResumeText:  "Skills:\nGo, PostgreSQL",
		Postings:    testPostings(),
		Preferences: config.DefaultPreferences(),
	})
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)

	assert.Equal(t, "Backend Engineer", result.Matches[0].Posting.Title)
	assert.GreaterOrEqual(t,
		result.Matches[0].RankingScore(),
		result.Matches[1].RankingScore(),
	)
}

func TestMatcher_DeduplicatesBeforeIndexing(t *testing.T) {
	client := &scriptedClient{}
	m := newTestMatcher(client)

	postings := []types.Posting{
		{ExternalID: "1", Source: "linkedin", Title: "Backend Engineer", Company: "Acme Inc.",
			Location: "Berlin", Description: "Go services."},
		{ExternalID: "2", Source: "indeed", Title: "Backend Engineer", Company: "Acme",
			Location: "Berlin", Description: "Go services again."},
	}

	result, err := m.Match(context.Background(), MatchRequest{
		ResumeText:  "Skills:\nGo",
		Postings:    postings,
		Preferences: config.DefaultPreferences(),
		Deduplicate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Input)
	assert.Equal(t, 1, result.Stats.AfterDedup)
	assert.Equal(t, 1, result.Stats.Indexed)
}

func TestMatcher_ReconstructsUnknownPostings(t *testing.T) {
	client := &scriptedClient{}
	m := newTestMatcher(client)

	// First run indexes; second run passes no postings, so candidates must
	// be rebuilt from stored metadata.
	_, err := m.Match(context.Background(), MatchRequest{
		ResumeText:  "Skills:\nGo",
		Postings:    testPostings(),
		Preferences: config.DefaultPreferences(),
	})
	require.NoError(t, err)

	result, err := m.Match(context.Background(), MatchRequest{
		ResumeText:  "Skills:\nGo",
		Preferences: config.DefaultPreferences(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Matches)
	for _, match := range result.Matches {
		assert.NotEmpty(t, match.Posting.Title)
		assert.NotEqual(t, "", match.Posting.Source)
	}
}
