package graph

import (
	"context"

	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// MockStore is a configurable mock of Store for tests. Set the function
// fields to control behavior; unset fields return empty results.
type MockStore struct {
	ConceptsFunc          func(ctx context.Context) ([]models.Concept, error)
	TablesForConceptsFunc func(ctx context.Context, conceptNames []string) ([]models.CandidateTable, error)
	AllTablesFunc         func(ctx context.Context) ([]models.CandidateTable, error)
	RunFunc               func(ctx context.Context, query string) ([]MetadataRow, error)

	// Call tracking for verification.
	ConceptsCalls          int
	TablesForConceptsCalls int
	AllTablesCalls         int
	RunCalls               int
	LastQuery              string
}

var _ Store = (*MockStore)(nil)

// Concepts implements Store.
func (m *MockStore) Concepts(ctx context.Context) ([]models.Concept, error) {
	m.ConceptsCalls++
	if m.ConceptsFunc != nil {
		return m.ConceptsFunc(ctx)
	}
	return nil, nil
}

// TablesForConcepts implements Store.
func (m *MockStore) TablesForConcepts(ctx context.Context, conceptNames []string) ([]models.CandidateTable, error) {
	m.TablesForConceptsCalls++
	if m.TablesForConceptsFunc != nil {
		return m.TablesForConceptsFunc(ctx, conceptNames)
	}
	return nil, nil
}

// AllTables implements Store.
func (m *MockStore) AllTables(ctx context.Context) ([]models.CandidateTable, error) {
	m.AllTablesCalls++
	if m.AllTablesFunc != nil {
		return m.AllTablesFunc(ctx)
	}
	return nil, nil
}

// Run implements Store.
func (m *MockStore) Run(ctx context.Context, query string) ([]MetadataRow, error) {
	m.RunCalls++
	m.LastQuery = query
	if m.RunFunc != nil {
		return m.RunFunc(ctx, query)
	}
	return nil, nil
}
