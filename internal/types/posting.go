// Package types provides type definitions for structured data used throughout the job-match-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Posting represents a job posting normalized to a common schema regardless
// of the source connector that produced it. It is immutable once produced.
type Posting struct {
	ExternalID      string `json:"external_id"`
	Source          string `json:"source"` // greenhouse, lever, jsearch, workday, generic
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location,omitempty"`
	WorkplaceType   string `json:"workplace_type,omitempty"` // remote, hybrid, onsite
	Description     string `json:"description"`
	Requirements    string `json:"requirements,omitempty"`
	SalaryMin       *int   `json:"salary_min,omitempty"`
	SalaryMax       *int   `json:"salary_max,omitempty"`
	SalaryCurrency  string `json:"salary_currency,omitempty"`
	EmploymentType  string `json:"employment_type,omitempty"` // full-time, part-time, contract
	ExperienceLevel string `json:"experience_level,omitempty"`
	ApplyURL        string `json:"apply_url,omitempty"`
}

// ID returns the canonical identity of a posting: "source:external_id".
// This is the key used for vector store documents and cross-query merging.
func (p *Posting) ID() string {
	return fmt.Sprintf("%s:%s", p.Source, p.ExternalID)
}

// SalaryRange formats the posting's salary range for prompts,
// or "Not specified" when the posting carries no range.
func (p *Posting) SalaryRange() string {
	if p.SalaryMin != nil && p.SalaryMax != nil {
		return fmt.Sprintf("%d - %d", *p.SalaryMin, *p.SalaryMax)
	}
	if p.SalaryMin != nil {
		return fmt.Sprintf("%d+", *p.SalaryMin)
	}
	return "Not specified"
}
