package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-match-agent/internal/config"
	"github.com/jonathan/job-match-agent/internal/llm"
	"github.com/jonathan/job-match-agent/internal/prompts"
	"github.com/jonathan/job-match-agent/internal/schemas"
	"github.com/jonathan/job-match-agent/internal/types"
)

// defaultJudgeWorkers bounds concurrent expensive-tier calls. The expensive
// tier is rate-limited aggressively, so the default is sequential.
const defaultJudgeWorkers = 1

// Judged pairs a posting with its full judge evaluation.
type Judged struct {
	Posting types.Posting
	Score   types.JudgeScore
}

// JudgeScorer runs the full LLM-as-judge evaluation on the expensive tier.
// A candidate whose evaluation still fails after retries is dropped rather
// than scored partially.
type JudgeScorer struct {
	client  llm.Client
	weights config.Weights
	retry   retryConfig
	workers int
	logger  *zap.Logger
}

// NewJudgeScorer creates a judge with the given dimension weights. A nil
// logger disables logging.
func NewJudgeScorer(client llm.Client, weights config.Weights, logger *zap.Logger) *JudgeScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JudgeScorer{
		client:  client,
		weights: weights,
		retry:   defaultRetryConfig(),
		workers: defaultJudgeWorkers,
		logger:  logger,
	}
}

// SetWorkers overrides the judge's concurrency bound. Values below 1 are
// ignored.
func (j *JudgeScorer) SetWorkers(n int) {
	if n >= 1 {
		j.workers = n
	}
}

// ScoreAll evaluates every posting, preserving input order in the output,
// and reports how many candidates were dropped after retry exhaustion.
// Only context cancellation fails the stage.
func (j *JudgeScorer) ScoreAll(ctx context.Context, resumeText string, postings []types.Posting, prefs *config.Preferences) ([]Judged, int, error) {
	if len(postings) == 0 {
		return nil, 0, nil
	}

	scores := make([]*types.JudgeScore, len(postings))

	eg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, j.workers)

	for i := range postings {
		i := i
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			score, err := j.Score(ctx, resumeText, &postings[i], prefs)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				j.logger.Warn("judge failed after retries, dropping candidate",
					zap.String("posting", postings[i].ID()),
					zap.Error(err),
				)
				return nil
			}
			scores[i] = score
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}

	var judged []Judged
	dropped := 0
	for i := range postings {
		if scores[i] == nil {
			dropped++
			continue
		}
		judged = append(judged, Judged{Posting: postings[i], Score: *scores[i]})
	}

	j.logger.Info("judge scoring complete",
		zap.Int("scored", len(judged)),
		zap.Int("dropped", dropped),
	)
	return judged, dropped, nil
}

// Score evaluates one posting with retries. The response must validate
// against the judge response schema; dimension values are clamped to [1,10]
// and the overall score is recomputed from the weights rather than trusted
// from the model.
func (j *JudgeScorer) Score(ctx context.Context, resumeText string, p *types.Posting, prefs *config.Preferences) (*types.JudgeScore, error) {
	template := prompts.MustGet("matching.json", "judge-score")
	prompt := prompts.Format(template, map[string]string{
		"ResumeText":         resumeText,
		"Title":              p.Title,
		"Company":            p.Company,
		"Location":           orDefault(p.Location, "Not specified"),
		"Description":        p.Description,
		"Requirements":       orDefault(p.Requirements, "Not specified"),
		"Salary":             p.SalaryRange(),
		"PreferredLocations": preferredLocations(prefs),
		"SalaryRange":        preferredSalaryRange(prefs),
	})

	return retryWithBackoff(ctx, j.retry, func() (*types.JudgeScore, error) {
		raw, err := j.client.GenerateJSON(ctx, prompt, llm.TierExpensive)
		if err != nil {
			return nil, fmt.Errorf("judge call failed: %w", err)
		}

		cleaned := llm.CleanJSONBlock(raw)
		if err := schemas.ValidateJSON(schemas.JudgeResponse, cleaned); err != nil {
			return nil, fmt.Errorf("judge response rejected: %w", err)
		}

		var score types.JudgeScore
		if err := json.Unmarshal([]byte(cleaned), &score); err != nil {
			return nil, fmt.Errorf("failed to parse judge response: %w", err)
		}

		score.Breakdown = clampBreakdown(score.Breakdown)
		score.OverallScore = WeightedOverall(score.Breakdown, j.weights)
		return &score, nil
	})
}

// WeightedOverall computes the overall score as the weighted average of the
// dimension breakdown, rounded to two decimals. Degenerate weights fall
// back to the defaults.
func WeightedOverall(b types.DimensionBreakdown, w config.Weights) float64 {
	sum := w.Sum()
	if sum <= 0 {
		w = config.DefaultWeights()
		sum = w.Sum()
	}

	total := float64(b.Skills)*w.Skills +
		float64(b.Experience)*w.Experience +
		float64(b.Education)*w.Education +
		float64(b.Location)*w.Location +
		float64(b.Salary)*w.Salary

	return clampScore(round2(total / sum))
}

func clampBreakdown(b types.DimensionBreakdown) types.DimensionBreakdown {
	b.Skills = clampDim(b.Skills)
	b.Experience = clampDim(b.Experience)
	b.Education = clampDim(b.Education)
	b.Location = clampDim(b.Location)
	b.Salary = clampDim(b.Salary)
	return b
}

func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func preferredLocations(prefs *config.Preferences) string {
	if prefs == nil || len(prefs.Locations) == 0 {
		return "Any"
	}
	return strings.Join(prefs.Locations, ", ")
}

func preferredSalaryRange(prefs *config.Preferences) string {
	if prefs == nil {
		return "Not specified"
	}
	switch {
	case prefs.SalaryMin != nil && prefs.SalaryMax != nil:
		return fmt.Sprintf("%d - %d", *prefs.SalaryMin, *prefs.SalaryMax)
	case prefs.SalaryMin != nil:
		return fmt.Sprintf("%d+", *prefs.SalaryMin)
	default:
		return "Not specified"
	}
}
