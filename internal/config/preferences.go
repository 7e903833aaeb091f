// Package config provides preference loading and validation for the matching funnel.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// weightsTolerance is the allowed deviation when checking that weights sum to 1.0.
const weightsTolerance = 0.01

// Weights holds the scoring dimension weights. They must sum to 1.0 within
// weightsTolerance; the check runs at preference load time, never inside
// the pipeline.
type Weights struct {
	Skills     float64 `json:"skills" validate:"gte=0,lte=1"`
	Experience float64 `json:"experience" validate:"gte=0,lte=1"`
	Education  float64 `json:"education" validate:"gte=0,lte=1"`
	Location   float64 `json:"location" validate:"gte=0,lte=1"`
	Salary     float64 `json:"salary" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the default dimension weighting: 35/25/15/15/10.
func DefaultWeights() Weights {
	return Weights{
		Skills:     0.35,
		Experience: 0.25,
		Education:  0.15,
		Location:   0.15,
		Salary:     0.10,
	}
}

// Sum returns the total of all five weights.
func (w Weights) Sum() float64 {
	return w.Skills + w.Experience + w.Education + w.Location + w.Salary
}

// Validate checks that the weights sum to 1.0 within tolerance.
func (w Weights) Validate() error {
	if diff := math.Abs(w.Sum() - 1.0); diff > weightsTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.2f", w.Sum())
	}
	return nil
}

// Preferences represents the candidate's search and matching preferences.
type Preferences struct {
	JobTitles         []string `json:"job_titles,omitempty"`
	Locations         []string `json:"locations,omitempty"`
	ExcludedLocations []string `json:"excluded_locations,omitempty"`
	SalaryMin         *int     `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax         *int     `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	WorkplaceTypes    []string `json:"workplace_types,omitempty"` // remote, hybrid, onsite
	ExperienceLevel   string   `json:"experience_level,omitempty" validate:"omitempty,oneof=entry mid senior lead executive"`
	Weights           Weights  `json:"weights"`
	EmploymentTypes   []string `json:"employment_types,omitempty"` // FULLTIME, PARTTIME, CONTRACT, INTERNSHIP, TEMPORARY
	MultiQuery        bool     `json:"multi_query,omitempty"`
	InitialK          int      `json:"initial_k,omitempty" validate:"gte=0"` // 0 = size-adaptive
	FinalK            int      `json:"final_k,omitempty" validate:"gte=0"`   // 0 = size-adaptive
}

// DefaultPreferences returns preferences with the default weights and a
// mid-level experience target.
func DefaultPreferences() *Preferences {
	return &Preferences{
		ExperienceLevel: "mid",
		Weights:         DefaultWeights(),
	}
}

var validate = validator.New()

// Validate checks field constraints and the weights sum invariant.
func (p *Preferences) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid preferences: %w", err)
	}
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	if p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin > *p.SalaryMax {
		return fmt.Errorf("salary_min %d exceeds salary_max %d", *p.SalaryMin, *p.SalaryMax)
	}
	return nil
}

// LoadPreferences loads and validates preferences from a JSON file.
// Missing weight values fall back to the defaults before validation,
// so a file that omits "weights" entirely is still valid.
func LoadPreferences(path string) (*Preferences, error) {
	if path == "" {
		return nil, fmt.Errorf("preferences path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences file %s: %w", path, err)
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences JSON: %w", err)
	}

	// A zero-valued weights block means the file omitted it entirely.
	if prefs.Weights == (Weights{}) {
		prefs.Weights = DefaultWeights()
	}

	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	return prefs, nil
}
