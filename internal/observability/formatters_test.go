package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-match-agent/internal/pipeline"
	"github.com/jonathan/job-match-agent/internal/types"
)

func sampleMatch() types.ScoredMatch {
	integrated := 7.42
	return types.ScoredMatch{
		Posting: types.Posting{
			ExternalID: "1",
			Source:     "linkedin",
			Title:      "Backend Engineer",
			Company:    "Acme Corp",
			Location:   "Berlin",
		},
		Judge: types.JudgeScore{
			OverallScore: 7.3,
			Breakdown:    types.DimensionBreakdown{Skills: 8, Experience: 7, Education: 6, Location: 9, Salary: 5},
			Reasoning:    "Strong overlap on core stack.",
			Strengths:    []string{"Go", "PostgreSQL"},
			MissingSkills: []string{
				"Kubernetes",
			},
		},
		ATS:             &types.ATSScore{Score: 62.5, MissingKeywords: []string{"docker"}},
		IntegratedScore: &integrated,
	}
}

func TestPrintRankedMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRankedMatches([]types.ScoredMatch{sampleMatch()})
	output := buf.String()

	assert.Contains(t, output, "RANKED MATCHES")
	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "7.42")
	assert.Contains(t, output, "Berlin")
}

func TestPrintRankedMatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRankedMatches(nil)

	assert.Contains(t, buf.String(), "No matches found.")
}

func TestPrintMatchDetail(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	match := sampleMatch()
	p.PrintMatchDetail(1, &match)
	output := buf.String()

	assert.Contains(t, output, "MATCH #1")
	assert.Contains(t, output, "Strengths:")
	assert.Contains(t, output, "Kubernetes")
	assert.Contains(t, output, "docker")
}

func TestPrintMatchDetail_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMatchDetail(1, nil)

	assert.Empty(t, buf.String())
}

func TestPrintFunnelStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFunnelStats(pipeline.Stats{
		Input:               40,
		AfterDedup:          30,
		AfterPreFilter:      25,
		Indexed:             25,
		Retrieved:           10,
		PassedGate:          6,
		Scored:              5,
		DroppedAfterRetries: 1,
	})
	output := buf.String()

	assert.Contains(t, output, "MATCHING FUNNEL")
	assert.Contains(t, output, "40")
	assert.Contains(t, output, "Dropped (retries):  1")
}
