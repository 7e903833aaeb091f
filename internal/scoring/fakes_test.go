package scoring

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/job-match-agent/internal/llm"
)

// stubClient answers GenerateJSON from a per-call queue, or with a fixed
// response once the queue is drained. Safe for concurrent use.
type stubClient struct {
	mu        sync.Mutex
	queue     []stubReply
	fallback  string
	calls     int
	lastTier  llm.ModelTier
	byPattern func(prompt string) (string, error)
}

type stubReply struct {
	response string
	err      error
}

func (s *stubClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.GenerateJSON(ctx, prompt, tier)
}

func (s *stubClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastTier = tier

	if s.byPattern != nil {
		return s.byPattern(prompt)
	}
	if len(s.queue) > 0 {
		reply := s.queue[0]
		s.queue = s.queue[1:]
		return reply.response, reply.err
	}
	if s.fallback != "" {
		return s.fallback, nil
	}
	return "", errors.New("no stubbed response")
}

func (s *stubClient) GetModel(llm.ModelTier) string { return "stub-model" }

func (s *stubClient) Close() error { return nil }

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// validJudgeJSON is a schema-conformant judge response used across tests.
const validJudgeJSON = `{
	"breakdown": {"skills": 8, "experience": 7, "education": 6, "location": 9, "salary": 5},
	"reasoning": "Strong technical overlap with minor gaps.",
	"strengths": ["Go", "distributed systems"],
	"missing_skills": ["Kubernetes"],
	"interview_talking_points": ["scaling work"],
	"requirement_matches": [
		{"text": "5+ years Go", "category": "experience", "met": true, "evidence": "8 years listed", "confidence": 0.9}
	],
	"requirements_met_ratio": 0.8
}`
