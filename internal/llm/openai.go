package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"geekqa/internal/contextutil"
)

// newOpenAIClient builds a go-openai client for an OpenAI-compatible server root.
func newOpenAIClient(baseURL, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	cfg.BaseURL = base
	return openai.NewClientWithConfig(cfg)
}

// OpenAIGenerator generates answers with an OpenAI-compatible chat completions API.
type OpenAIGenerator struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIGenerator creates a generator. baseURL is the server root, e.g. "http://localhost:8080".
func NewOpenAIGenerator(baseURL, apiKey, model string, maxTokens int) (*OpenAIGenerator, error) {
	if baseURL == "" || model == "" {
		return nil, fmt.Errorf("base url and model are required")
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be greater than 0, got %d", maxTokens)
	}
	return &OpenAIGenerator{
		client:    newOpenAIClient(baseURL, apiKey),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Generate sends the prompt as a single user message and returns the first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		logger.ErrorContext(ctx, "chat completion failed", "model", g.model, "error", err)
		return Answer{}, classify(ctx, "chat completion", describeAPIError(err))
	}
	if len(resp.Choices) == 0 {
		return Answer{}, fmt.Errorf("chat completion: %w: %w", ErrGenerationUnavailable, errors.New("no choices in response"))
	}

	logger.DebugContext(ctx, "chat completion completed", "model", g.model,
		"finish_reason", resp.Choices[0].FinishReason, "total_tokens", resp.Usage.TotalTokens)
	return Answer{Text: resp.Choices[0].Message.Content}, nil
}

// describeAPIError adds the server's status and message to API errors.
func describeAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("API error %d: %s: %w", reqErr.HTTPStatusCode, detail, err)
		}
		return fmt.Errorf("API error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	return err
}

// extractDetail reads the "detail" field some OpenAI-compatible servers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
