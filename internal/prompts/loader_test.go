package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("matching.json", "judge-score")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "job matching analyst")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("matching.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_AllMatchingPrompts(t *testing.T) {
	ClearCache()

	for _, key := range []string{"quick-relevance", "judge-score", "multi-query", "rerank-candidates"} {
		assert.NotPanics(t, func() {
			prompt := MustGet("matching.json", key)
			assert.NotEmpty(t, prompt)
		})
	}
}

func TestFormat(t *testing.T) {
	template := "Query: {{.Query}} (top {{.TopN}})"
	data := map[string]string{
		"Query": "golang backend engineer",
		"TopN":  "5",
	}

	result := Format(template, data)
	assert.Equal(t, "Query: golang backend engineer (top 5)", result)
}

func TestFormat_MissingPlaceholderLeftIntact(t *testing.T) {
	result := Format("Hello {{.Name}}", map[string]string{"Other": "x"})
	assert.Equal(t, "Hello {{.Name}}", result)
}
