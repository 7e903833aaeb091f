package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-match-agent/internal/types"
)

func TestNormalizeCompany(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips Inc with period", input: "Acme Inc.", expected: "acme"},
		{name: "strips LLC", input: "Widgets LLC", expected: "widgets"},
		{name: "strips comma before suffix", input: "Initech, Corp", expected: "initech"},
		{name: "strips GmbH", input: "Beispiel GmbH", expected: "beispiel"},
		{name: "collapses whitespace", input: "  Stark   Industries  ", expected: "stark industries"},
		{name: "no suffix unchanged", input: "Acme", expected: "acme"},
		{name: "suffix word inside name kept", input: "Corporate Services", expected: "corporate services"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCompany(tt.input))
		})
	}
}

func TestDeduplicate_SuffixVariantsCollapse(t *testing.T) {
	d := New()

	postings := []types.Posting{
		{Source: "greenhouse", ExternalID: "1", Company: "Acme Inc.", Title: "Software Engineer", Location: "Remote"},
		{Source: "lever", ExternalID: "2", Company: "Acme", Title: "Software Engineer", Location: "Remote"},
	}

	unique := d.Deduplicate(postings)
	require.Len(t, unique, 1)
	// First-seen wins, regardless of source
	assert.Equal(t, "greenhouse", unique[0].Source)
	assert.Equal(t, 1, d.SeenCount())
}

func TestDeduplicate_Idempotent(t *testing.T) {
	d := New()

	postings := []types.Posting{
		{Source: "a", ExternalID: "1", Company: "Acme", Title: "Engineer", Location: "NYC"},
		{Source: "a", ExternalID: "2", Company: "Initech", Title: "Engineer", Location: "NYC"},
	}

	first := d.Deduplicate(postings)
	require.Len(t, first, 2)

	// Running the same list again yields nothing new
	second := d.Deduplicate(postings)
	assert.Empty(t, second)
	assert.Equal(t, 2, d.SeenCount())
}

func TestDeduplicate_DifferentLocationsKept(t *testing.T) {
	d := New()

	postings := []types.Posting{
		{Source: "a", ExternalID: "1", Company: "Acme", Title: "Engineer", Location: "NYC"},
		{Source: "a", ExternalID: "2", Company: "Acme", Title: "Engineer", Location: "SF"},
		{Source: "a", ExternalID: "3", Company: "Acme", Title: "Engineer"},
	}

	unique := d.Deduplicate(postings)
	assert.Len(t, unique, 3)
}

func TestReset(t *testing.T) {
	d := New()

	postings := []types.Posting{
		{Source: "a", ExternalID: "1", Company: "Acme", Title: "Engineer"},
	}

	d.Deduplicate(postings)
	require.Equal(t, 1, d.SeenCount())

	d.Reset()
	assert.Equal(t, 0, d.SeenCount())

	// After reset the same posting is new again
	unique := d.Deduplicate(postings)
	assert.Len(t, unique, 1)
}
