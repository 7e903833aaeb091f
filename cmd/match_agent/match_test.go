package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPostings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postings.json")
	content := `[
		{"external_id": "1", "source": "linkedin", "title": "Backend Engineer", "company": "Acme", "description": "Go services."},
		{"external_id": "2", "source": "indeed", "title": "Data Engineer", "company": "Initech", "description": "Pipelines."}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	postings, err := loadPostings(path)
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, "linkedin:1", postings[0].ID())
	assert.Equal(t, "Data Engineer", postings[1].Title)
}

func TestLoadPostings_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := loadPostings(path)
	assert.Error(t, err)
}

func TestLoadPostings_MissingFile(t *testing.T) {
	_, err := loadPostings(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestMatchCommand_ResumeFlagRequired(t *testing.T) {
	flag := matchCmd.Flags().Lookup("resume")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
}
