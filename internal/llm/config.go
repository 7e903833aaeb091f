// Package llm provides the scoring-oracle and embedding abstractions for the
// matching funnel, with centralized model tier configuration.
package llm

// ModelTier represents the cost/quality level of a model. The funnel uses
// exactly two: a cheap tier for screening and query expansion, and an
// expensive tier for full judge scoring. The interface shape never differs
// between tiers, only latency, cost, and quality.
type ModelTier string

const (
	// TierCheap is for high-volume low-stakes calls: quick-relevance
	// screening, multi-query expansion, reranking.
	TierCheap ModelTier = "cheap"
	// TierExpensive is for the full judge evaluation.
	TierExpensive ModelTier = "expensive"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (future)
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider (future)
	ProviderAnthropic Provider = "anthropic"
)

// Config holds the model configuration for the funnel
type Config struct {
	Provider       Provider
	Models         map[ModelTier]string
	EmbeddingModel string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierCheap:     "gemini-2.5-flash-lite",
			TierExpensive: "gemini-2.5-pro",
		},
		EmbeddingModel: "text-embedding-004",
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fall back to the cheap tier rather than failing outright
	if model, ok := c.Models[TierCheap]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:       c.Provider,
		Models:         make(map[ModelTier]string),
		EmbeddingModel: c.EmbeddingModel,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
