// Package dedup collapses job postings that are the same listing seen via
// multiple sources. The composite key is built from normalized company, title,
// and location; first occurrence of a key wins.
package dedup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/job-match-agent/internal/types"
)

// companySuffixes matches trailing legal-entity suffixes for comparison.
var companySuffixes = regexp.MustCompile(
	`(?i)\s*,?\s*\b(inc|incorporated|llc|ltd|limited|corp|corporation|co|company|` +
		`group|holdings|international|plc|gmbh|ag|sa|srl|pty)\b\.?\s*$`,
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeCompany normalizes a company name for deduplication.
// Strips common suffixes (Inc, LLC, Ltd, etc.), lowercases,
// and collapses whitespace.
func NormalizeCompany(name string) string {
	name = strings.TrimSpace(name)
	name = companySuffixes.ReplaceAllString(name, "")
	name = strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(name, " ")))
	return name
}

// NormalizeTitle normalizes a job title for deduplication.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(title, " ")))
}

// NormalizeLocation normalizes a location for deduplication.
// A missing location becomes the empty string.
func NormalizeLocation(location string) string {
	if location == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(whitespace.ReplaceAllString(location, " ")))
}

// Key creates the composite deduplication key for a posting.
func Key(p *types.Posting) string {
	return fmt.Sprintf("%s|%s|%s",
		NormalizeCompany(p.Company),
		NormalizeTitle(p.Title),
		NormalizeLocation(p.Location),
	)
}

// Deduplicator removes duplicate postings across sources. The seen-key set
// is mutable and survives across calls to support incremental runs; it must
// be owned by a single orchestration run, not shared between concurrent
// callers.
type Deduplicator struct {
	seenKeys map[string]struct{}
}

// New creates an empty Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{seenKeys: make(map[string]struct{})}
}

// Deduplicate removes duplicate postings from the list, preserving order.
// First-seen wins; later duplicates are dropped regardless of source.
func (d *Deduplicator) Deduplicate(postings []types.Posting) []types.Posting {
	unique := make([]types.Posting, 0, len(postings))

	for _, p := range postings {
		key := Key(&p)
		if _, seen := d.seenKeys[key]; seen {
			continue
		}
		d.seenKeys[key] = struct{}{}
		unique = append(unique, p)
	}

	return unique
}

// SeenCount returns the number of unique keys seen so far.
func (d *Deduplicator) SeenCount() int {
	return len(d.seenKeys)
}

// Reset clears seen keys for a fresh deduplication pass.
func (d *Deduplicator) Reset() {
	d.seenKeys = make(map[string]struct{})
}
