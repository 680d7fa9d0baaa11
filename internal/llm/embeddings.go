package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient embeds questions with an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbeddingsClient creates a new embeddings client. baseURL is the server root.
func NewEmbeddingsClient(baseURL, apiKey, model string) *EmbeddingsClient {
	return &EmbeddingsClient{
		client: newOpenAIClient(baseURL, apiKey),
		model:  openai.EmbeddingModel(model),
	}
}

// EmbedQuery returns the embedding vector for a single text.
func (c *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", describeAPIError(err))
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}
