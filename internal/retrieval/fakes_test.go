package retrieval

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// stubEmbedder returns a deterministic unit vector per input text so
// identical texts always land on the same point.
type stubEmbedder struct {
	calls int
	fail  bool
}

func (s *stubEmbedder) Embed(_ context.Context, text string, _ llm.TaskType) ([]float32, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("embedding unavailable")
	}
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

func (s *stubEmbedder) Close() error { return nil }

// stubClient serves canned responses keyed by call order.
type stubClient struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.GenerateJSON(ctx, prompt, tier)
}

func (s *stubClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("no stubbed response")
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub-model" }

func (s *stubClient) Close() error { return nil }

// stubReranker reverses candidate order, or fails on demand.
type stubReranker struct {
	fail bool
}

func (s *stubReranker) Rerank(_ context.Context, _ string, candidates []vectorstore.Match, topN int) ([]vectorstore.Match, error) {
	if s.fail {
		return nil, errors.New("rerank unavailable")
	}
	reversed := make([]vectorstore.Match, 0, len(candidates))
	for i := len(candidates) - 1; i >= 0; i-- {
		reversed = append(reversed, candidates[i])
	}
	if topN < len(reversed) {
		reversed = reversed[:topN]
	}
	return reversed, nil
}
