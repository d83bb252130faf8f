package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
	"github.com/metaquery-ai/metaquery-engine/pkg/retry"
)

// AnthropicClient dispatches prompts to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates an Anthropic-backed model client.
func NewAnthropicClient(apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  model,
		logger: logger.Named("llm-anthropic"),
	}, nil
}

// Generate implements Client.
func (c *AnthropicClient) Generate(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error) {
	system, user, err := prompts.Render(contextID, variables)
	if err != nil {
		return "", err
	}

	c.logger.Debug("model request",
		zap.String("context_id", contextID),
		zap.Int("prompt_len", len(user)),
		zap.Float64("temperature", temperature))

	temp := float32(temperature)
	start := time.Now()

	resp, err := retry.DoWithResult(ctx, retry.ModelCallConfig(), retry.IsTransientModelError, func() (anthropic.MessagesResponse, error) {
		return c.client.CreateMessages(ctx, anthropic.MessagesRequest{
			Model:       anthropic.Model(c.model),
			System:      system,
			MaxTokens:   maxTokens,
			Temperature: &temp,
			Messages: []anthropic.Message{
				anthropic.NewUserTextMessage(user),
			},
		})
	})
	if err != nil {
		c.logger.Error("model request failed",
			zap.String("context_id", contextID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("anthropic %s: %w", contextID, err)
	}

	text := firstTextBlock(resp)
	if text == "" {
		return "", fmt.Errorf("anthropic %s: empty response", contextID)
	}

	c.logger.Info("model request completed",
		zap.String("context_id", contextID),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

func firstTextBlock(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
