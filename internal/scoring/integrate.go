package scoring

import (
	"math"

	"github.com/jonathan/job-match-agent/internal/types"
)

// Blend weights for the integrated score. The requirements-met term only
// participates when the judge returned a ratio.
const (
	llmWeight          = 0.60
	atsWeight          = 0.25
	requirementsWeight = 0.15

	llmWeightNoRatio = 0.69
	atsWeightNoRatio = 0.31
)

// Integrate blends the judge's overall score with the normalized ATS score
// and, when available, the requirements-met ratio into a single [1,10]
// ranking score rounded to two decimals.
func Integrate(judge *types.JudgeScore, ats *types.ATSScore) float64 {
	atsNorm := 1 + ats.Score/100*9

	var blended float64
	if judge.RequirementsMetRatio != nil {
		reqNorm := 1 + *judge.RequirementsMetRatio*9
		blended = judge.OverallScore*llmWeight + atsNorm*atsWeight + reqNorm*requirementsWeight
	} else {
		blended = judge.OverallScore*llmWeightNoRatio + atsNorm*atsWeightNoRatio
	}
	return clampScore(round2(blended))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
