// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-match-agent/internal/pipeline"
	"github.com/jonathan/job-match-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFunnelStats outputs how many candidates each pipeline stage let
// through.
func (p *Printer) PrintFunnelStats(stats pipeline.Stats) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Input postings:     %d\n", stats.Input))
	sb.WriteString(fmt.Sprintf("After dedup:        %d\n", stats.AfterDedup))
	sb.WriteString(fmt.Sprintf("After pre-filter:   %d\n", stats.AfterPreFilter))
	sb.WriteString(fmt.Sprintf("Newly indexed:      %d\n", stats.Indexed))
	sb.WriteString(fmt.Sprintf("Retrieved:          %d\n", stats.Retrieved))
	sb.WriteString(fmt.Sprintf("Passed gate:        %d\n", stats.PassedGate))
	sb.WriteString(fmt.Sprintf("Scored:             %d", stats.Scored))
	if stats.DroppedAfterRetries > 0 {
		sb.WriteString(fmt.Sprintf("\nDropped (retries):  %d", stats.DroppedAfterRetries))
	}

	p.printBox("MATCHING FUNNEL", sb.String())
}

// PrintRankedMatches outputs a compact ranked list of the matches.
func (p *Printer) PrintRankedMatches(matches []types.ScoredMatch) {
	if len(matches) == 0 {
		p.printBox("RANKED MATCHES", "No matches found.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total matches: %d\n\n", len(matches)))

	for i := range matches {
		match := &matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s — %s\n", i+1, match.Posting.Title, match.Posting.Company))
		sb.WriteString(fmt.Sprintf("    Score: %.2f", match.RankingScore()))
		if match.ATS != nil {
			sb.WriteString(fmt.Sprintf(" (ATS: %.1f)", match.ATS.Score))
		}
		sb.WriteString("\n")
		if match.Posting.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", match.Posting.Location))
		}
		if i < len(matches)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RANKED MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchDetail outputs the full evaluation for one match: dimension
// breakdown, strengths, gaps, and talking points.
func (p *Printer) PrintMatchDetail(rank int, match *types.ScoredMatch) {
	if match == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Company:  %s\n", match.Posting.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", match.Posting.Title))
	sb.WriteString("\n")

	b := match.Judge.Breakdown
	sb.WriteString(fmt.Sprintf("Skills %d  Experience %d  Education %d\n", b.Skills, b.Experience, b.Education))
	sb.WriteString(fmt.Sprintf("Location %d  Salary %d\n", b.Location, b.Salary))
	sb.WriteString(fmt.Sprintf("Overall:  %.2f\n", match.Judge.OverallScore))
	if match.IntegratedScore != nil {
		sb.WriteString(fmt.Sprintf("Blended:  %.2f\n", *match.IntegratedScore))
	}
	if ratio := match.Judge.RequirementsMetRatio; ratio != nil {
		sb.WriteString(fmt.Sprintf("Requirements met: %.0f%%\n", *ratio*100))
	}

	if match.Judge.Reasoning != "" {
		sb.WriteString("\n")
		sb.WriteString(match.Judge.Reasoning)
		sb.WriteString("\n")
	}

	writeList(&sb, "Strengths:", match.Judge.Strengths)
	writeList(&sb, "Missing skills:", match.Judge.MissingSkills)
	writeList(&sb, "Talking points:", match.Judge.TalkingPoints)

	if match.ATS != nil && len(match.ATS.MissingKeywords) > 0 {
		keywords := strings.Join(match.ATS.MissingKeywords, ", ")
		if len(keywords) > 40 {
			keywords = keywords[:37] + "..."
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("ATS keywords to add: %s\n", keywords))
	}

	p.printBox(fmt.Sprintf("MATCH #%d", rank), strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(header)
	sb.WriteString("\n")

	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
