package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/graph"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// SchemaNarrower produces the bounded candidate-table listing injected into
// the query-synthesis prompt. It is schema hinting only; final table
// membership is decided by the synthesized graph query.
type SchemaNarrower struct {
	store  graph.Store
	logger *zap.Logger
}

// NewSchemaNarrower creates a SchemaNarrower.
func NewSchemaNarrower(store graph.Store, logger *zap.Logger) *SchemaNarrower {
	return &SchemaNarrower{
		store:  store,
		logger: logger.Named("schema-narrower"),
	}
}

// Narrow returns candidate tables for the selected concepts, most confident
// first. With an empty selection it falls back to a capped listing of the
// whole catalog.
func (n *SchemaNarrower) Narrow(ctx context.Context, concepts []models.Concept) ([]models.CandidateTable, error) {
	if len(concepts) == 0 {
		tables, err := n.store.AllTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("narrow schema (full catalog): %w", err)
		}
		return tables, nil
	}

	names := make([]string, 0, len(concepts))
	for _, c := range concepts {
		names = append(names, c.Name)
	}

	tables, err := n.store.TablesForConcepts(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("narrow schema by concepts: %w", err)
	}

	n.logger.Debug("narrowed schema",
		zap.Int("concepts", len(concepts)),
		zap.Int("candidate_tables", len(tables)))
	return tables, nil
}

// FormatSchemaHint renders candidate tables as the text block for the
// query-synthesis prompt, one table per line with its concept and confidence
// tags.
func FormatSchemaHint(tables []models.CandidateTable) string {
	lines := make([]string, 0, len(tables))
	for _, t := range tables {
		concept := t.ConceptName
		if concept == "" {
			concept = "Uncategorized"
		}
		confidenceTag := ""
		if t.Confidence != "" {
			confidenceTag = fmt.Sprintf(" [%s]", t.Confidence)
		}
		description := t.Description
		if description == "" {
			description = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- [%s]%s %s: %s", concept, confidenceTag, t.Name, description))
	}
	return strings.Join(lines, "\n")
}
