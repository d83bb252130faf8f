package llm

import "context"

// MockClient is a configurable mock for testing model-dependent code.
// Set GenerateFunc to control behavior in tests.
type MockClient struct {
	// GenerateFunc is called when Generate is invoked. If nil, returns an
	// empty string and nil error.
	GenerateFunc func(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error)

	// Call tracking for verification.
	GenerateCalls int
	LastContextID string
	LastVariables map[string]string
}

// NewMockClient creates a new mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Generate implements Client.
func (m *MockClient) Generate(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error) {
	m.GenerateCalls++
	m.LastContextID = contextID
	m.LastVariables = variables
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, contextID, variables, temperature, maxTokens)
	}
	return "", nil
}

// Reset clears call tracking.
func (m *MockClient) Reset() {
	m.GenerateCalls = 0
	m.LastContextID = ""
	m.LastVariables = nil
}
