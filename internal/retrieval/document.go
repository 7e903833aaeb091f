// Package retrieval implements the vector indexing and two-stage search
// portion of the matching funnel: index surviving postings, build a focused
// query from the resume, retrieve with adaptive depth, rerank, and
// optionally expand into multiple queries.
package retrieval

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-match-agent/internal/types"
	"github.com/jonathan/job-match-agent/internal/vectorstore"
)

// Metadata keys stored with every indexed posting. The pipeline
// reconstructs a minimal posting from these when the supplied pool lacks
// the retrieved id.
const (
	MetaJobID         = "job_id"
	MetaSource        = "source"
	MetaCompany       = "company"
	MetaTitle         = "title"
	MetaLocation      = "location"
	MetaWorkplaceType = "workplace_type"
)

// BuildDocument converts a posting into the vector store document that gets
// embedded. Descriptions that arrive as HTML (common with board connectors)
// are flattened to text first.
func BuildDocument(p *types.Posting) vectorstore.Document {
	description := FlattenHTML(p.Description)
	requirements := FlattenHTML(p.Requirements)

	parts := []string{
		"Title: " + p.Title,
		"Company: " + p.Company,
	}
	if p.Location != "" {
		parts = append(parts, "Location: "+p.Location)
	}
	if p.WorkplaceType != "" {
		parts = append(parts, "Workplace: "+p.WorkplaceType)
	}
	parts = append(parts, "Description: "+description)
	if requirements != "" {
		parts = append(parts, "Requirements: "+requirements)
	}

	return vectorstore.Document{
		ID:      p.ID(),
		Content: strings.Join(parts, "\n"),
		Metadata: map[string]string{
			MetaJobID:         p.ExternalID,
			MetaSource:        p.Source,
			MetaCompany:       p.Company,
			MetaTitle:         p.Title,
			MetaLocation:      p.Location,
			MetaWorkplaceType: p.WorkplaceType,
		},
	}
}

// FlattenHTML extracts the text content of an HTML fragment. Plain text is
// returned unchanged; parse failures fall back to the raw input.
func FlattenHTML(text string) string {
	if !looksLikeHTML(text) {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	// Paragraph-ish elements become line breaks so the text stays readable
	doc.Find("br, p, li, div, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	flattened := strings.TrimSpace(doc.Text())
	if flattened == "" {
		return text
	}

	// Collapse runs of blank lines left by nested block elements
	lines := strings.Split(flattened, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// looksLikeHTML is a cheap tag heuristic; it only needs to catch the
// markup that job boards actually emit.
func looksLikeHTML(text string) bool {
	for _, tag := range []string{"<p", "<br", "<li", "<ul", "<div", "<strong", "<em", "<h1", "<h2", "<h3"} {
		if strings.Contains(strings.ToLower(text), tag) {
			return true
		}
	}
	return false
}
