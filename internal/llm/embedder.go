package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// TaskType selects the embedding task hint: documents at index time,
// queries at search time. Retrieval quality degrades when these are mixed up.
type TaskType string

const (
	// TaskRetrievalDocument embeds text for indexing
	TaskRetrievalDocument TaskType = "retrieval_document"
	// TaskRetrievalQuery embeds a search query
	TaskRetrievalQuery TaskType = "retrieval_query"
)

// Embedder converts text into a fixed-length vector.
type Embedder interface {
	// Embed returns the embedding vector for the given text
	Embed(ctx context.Context, text string, task TaskType) ([]float32, error)
	// Close releases any resources held by the embedder
	Close() error
}

// GeminiEmbedder implements Embedder using the Gemini embedding model
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder backed by the configured Gemini
// embedding model.
func NewGeminiEmbedder(ctx context.Context, config *Config, apiKey string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiEmbedder{
		client: client,
		model:  config.EmbeddingModel,
	}, nil
}

// Embed returns the embedding vector for the given text
func (e *GeminiEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	em := e.client.EmbeddingModel(e.model)
	switch task {
	case TaskRetrievalQuery:
		em.TaskType = genai.TaskTypeRetrievalQuery
	default:
		em.TaskType = genai.TaskTypeRetrievalDocument
	}

	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}

	return resp.Embedding.Values, nil
}

// Close releases resources held by the embedder
func (e *GeminiEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
