package types

// DimensionBreakdown holds the per-dimension judge scores. Every value is
// an integer in [1,10]; the judge scorer clamps out-of-range model output.
type DimensionBreakdown struct {
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Education  int `json:"education"`
	Location   int `json:"location"`
	Salary     int `json:"salary"`
}

// RequirementMatch represents one job requirement checked against the resume.
type RequirementMatch struct {
	Text       string  `json:"text"`
	Category   string  `json:"category"` // skill, experience, education, other
	Met        bool    `json:"met"`
	Evidence   string  `json:"evidence,omitempty"`
	Confidence float64 `json:"confidence"` // 0.0-1.0
}

// JudgeScore is the structured evaluation of one posting against one resume.
// OverallScore is the weighted average of the breakdown dimensions and is
// always in [1,10]. RequirementsMetRatio is nil when the model did not
// return requirement matches.
type JudgeScore struct {
	OverallScore         float64            `json:"overall_score"`
	Breakdown            DimensionBreakdown `json:"breakdown"`
	Reasoning            string             `json:"reasoning"`
	Strengths            []string           `json:"strengths"`
	MissingSkills        []string           `json:"missing_skills"`
	TalkingPoints        []string           `json:"interview_talking_points,omitempty"`
	RequirementMatches   []RequirementMatch `json:"requirement_matches,omitempty"`
	RequirementsMetRatio *float64           `json:"requirements_met_ratio,omitempty"`
}

// ATSScore is the deterministic keyword-overlap score. Score is in [0,100].
type ATSScore struct {
	Score             float64  `json:"score"`
	MatchedKeywords   []string `json:"matched_keywords"`
	MissingKeywords   []string `json:"missing_keywords"`
	TotalJobKeywords  int      `json:"total_job_keywords"`
	TechnicalMatchPct float64  `json:"technical_match_pct"`
	SoftSkillMatchPct float64  `json:"soft_skill_match_pct"`
}

// ScoredMatch is the pipeline's output unit: a posting with its judge score,
// optional ATS score, and optional integrated score in [1,10]. Immutable
// once produced by the orchestrator.
type ScoredMatch struct {
	Posting         Posting    `json:"posting"`
	Judge           JudgeScore `json:"judge_score"`
	ATS             *ATSScore  `json:"ats_score,omitempty"`
	IntegratedScore *float64   `json:"integrated_score,omitempty"`
}

// RankingScore returns the value the final ordering sorts on: the integrated
// score when present, otherwise the bare judge overall score.
func (m *ScoredMatch) RankingScore() float64 {
	if m.IntegratedScore != nil {
		return *m.IntegratedScore
	}
	return m.Judge.OverallScore
}
