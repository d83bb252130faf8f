package retrieval

import (
	"context"

	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// MockMetadataService is a configurable mock of MetadataService for tests.
type MockMetadataService struct {
	RetrieveFunc func(ctx context.Context, question string) (*models.RetrievalResult, error)

	RetrieveCalls int
	LastQuestion  string
}

var _ MetadataService = (*MockMetadataService)(nil)

// Retrieve implements MetadataService.
func (m *MockMetadataService) Retrieve(ctx context.Context, question string) (*models.RetrievalResult, error) {
	m.RetrieveCalls++
	m.LastQuestion = question
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, question)
	}
	return &models.RetrievalResult{}, nil
}
