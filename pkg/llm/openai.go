package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
	"github.com/metaquery-ai/metaquery-engine/pkg/retry"
)

// OpenAIClient dispatches prompts to any OpenAI-compatible chat completion
// endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint. The API
// key may be empty for local endpoints.
func NewOpenAIClient(baseURL, apiKey, model string, logger *zap.Logger) (*OpenAIClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/")

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		logger: logger.Named("llm-openai"),
	}, nil
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error) {
	system, user, err := prompts.Render(contextID, variables)
	if err != nil {
		return "", err
	}

	c.logger.Debug("model request",
		zap.String("context_id", contextID),
		zap.Int("prompt_len", len(user)),
		zap.Float64("temperature", temperature))

	start := time.Now()

	resp, err := retry.DoWithResult(ctx, retry.ModelCallConfig(), retry.IsTransientModelError, func() (openai.ChatCompletionResponse, error) {
		return c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			Temperature: float32(temperature),
			MaxTokens:   maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
	})
	if err != nil {
		c.logger.Error("model request failed",
			zap.String("context_id", contextID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("openai %s: %w", contextID, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai %s: no choices in response", contextID)
	}

	c.logger.Info("model request completed",
		zap.String("context_id", contextID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}
