package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/config"
)

// NewClient creates the configured model backend. The rest of the engine only
// sees the Client interface; which backend answers is a deployment decision.
func NewClient(cfg *config.AIConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, logger)
	case "openai":
		return NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}
