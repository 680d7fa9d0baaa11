package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"geekqa/internal/contextutil"
)

// BedrockAPI is the subset of the Bedrock runtime client used for generation.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockGenerator generates answers with an Anthropic text-completion model on Bedrock.
type BedrockGenerator struct {
	client    BedrockAPI
	modelID   string
	maxTokens int
}

type bedrockRequest struct {
	Prompt            string `json:"prompt"`
	MaxTokensToSample int    `json:"max_tokens_to_sample"`
}

type bedrockResponse struct {
	Completion string `json:"completion"`
	StopReason string `json:"stop_reason"`
}

// NewBedrockGenerator creates a generator for modelID with a fixed output token cap.
func NewBedrockGenerator(client BedrockAPI, modelID string, maxTokens int) (*BedrockGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("bedrock client is required")
	}
	if modelID == "" {
		return nil, fmt.Errorf("bedrock model id is required")
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be greater than 0, got %d", maxTokens)
	}
	return &BedrockGenerator{client: client, modelID: modelID, maxTokens: maxTokens}, nil
}

// Generate sends the prompt to the model and returns its completion.
func (g *BedrockGenerator) Generate(ctx context.Context, prompt string) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	body, err := json.Marshal(bedrockRequest{Prompt: prompt, MaxTokensToSample: g.maxTokens})
	if err != nil {
		return Answer{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		logger.ErrorContext(ctx, "bedrock invoke failed", "model_id", g.modelID, "error", err)
		return Answer{}, classify(ctx, "bedrock invoke", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return Answer{}, fmt.Errorf("decode bedrock response: %w: %w", ErrGenerationUnavailable, err)
	}
	if resp.Completion == "" && resp.StopReason == "" {
		return Answer{}, fmt.Errorf("bedrock response: %w: %w", ErrGenerationUnavailable, errors.New("missing completion"))
	}

	logger.DebugContext(ctx, "bedrock invoke completed", "model_id", g.modelID, "stop_reason", resp.StopReason)
	return Answer{Text: resp.Completion}, nil
}
