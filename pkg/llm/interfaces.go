// Package llm provides the model transport used by the retrieval and
// generation stages. Two backends are supported: the Anthropic API and any
// OpenAI-compatible endpoint.
package llm

import "context"

// Client is the model collaborator interface. Call sites identify themselves
// with a prompt context ID and pass template variables; the transport renders
// the prompt and returns the raw response text. Use this interface for
// dependency injection to enable mocking in tests.
type Client interface {
	// Generate dispatches one prompt and returns the model's text response.
	Generate(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error)
}

// Compile-time interface checks for both backends.
var (
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*MockClient)(nil)
)
