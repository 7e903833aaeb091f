package retrieval

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-match-agent/internal/config"
)

// maxSkillsExcerptChars bounds the skills excerpt pulled out of the resume.
const maxSkillsExcerptChars = 600

// skillsHeader matches resume section headers that introduce a skills
// block: "Skills", "Technical Skills:", "TECHNOLOGIES", "Tech Stack", etc.
var skillsHeader = regexp.MustCompile(`(?i)^\s*(technical\s+skills?|core\s+competenc(?:y|ies)|skills?|technologies|tech\s+stack|tooling)\s*:?\s*$`)

// sectionHeader is a loose match for any section header, used to find where
// a skills block ends.
var sectionHeader = regexp.MustCompile(`^\s*[A-Z][A-Za-z &/]{2,40}:?\s*$`)

// BuildQuery constructs the focused retrieval query: target title hint,
// preferred locations and workplace types, and a heuristically extracted
// skills excerpt from the resume. When the resume has no recognizable
// skills section the raw resume text is used instead.
func BuildQuery(resumeText string, prefs *config.Preferences, targetTitle string) string {
	var parts []string

	if targetTitle != "" {
		parts = append(parts, "Role: "+targetTitle)
	} else if prefs != nil && len(prefs.JobTitles) > 0 {
		parts = append(parts, "Role: "+strings.Join(prefs.JobTitles, ", "))
	}

	if prefs != nil && len(prefs.Locations) > 0 {
		parts = append(parts, "Locations: "+strings.Join(prefs.Locations, ", "))
	}
	if prefs != nil && len(prefs.WorkplaceTypes) > 0 {
		parts = append(parts, "Workplace: "+strings.Join(prefs.WorkplaceTypes, ", "))
	}

	skills := ExtractSkillsExcerpt(resumeText)
	if skills != "" {
		parts = append(parts, "Skills: "+skills)
	} else {
		parts = append(parts, resumeText)
	}

	return strings.Join(parts, "\n")
}

// ExtractSkillsExcerpt returns the text under the first skills-like header
// in the resume, bounded to maxSkillsExcerptChars. Returns "" when no such
// section exists.
func ExtractSkillsExcerpt(resumeText string) string {
	lines := strings.Split(resumeText, "\n")

	start := -1
	for i, line := range lines {
		if skillsHeader.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	var section []string
	for i := start; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		// A new section header ends the block; include the line only when it
		// is skills content.
		if line != "" && len(section) > 0 && sectionHeader.MatchString(lines[i]) && !skillsHeader.MatchString(lines[i]) {
			break
		}
		if line != "" {
			section = append(section, line)
		} else if len(section) > 0 {
			// First blank line after content: peek ahead; a following header
			// means the section is over.
			if next := nextNonEmpty(lines, i+1); next == "" || sectionHeader.MatchString(next) {
				break
			}
		}
	}

	excerpt := strings.Join(section, " ")
	if len(excerpt) > maxSkillsExcerptChars {
		excerpt = excerpt[:maxSkillsExcerptChars]
	}
	return strings.TrimSpace(excerpt)
}

func nextNonEmpty(lines []string, from int) string {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}
