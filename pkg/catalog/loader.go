package catalog

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/graph"
)

// Loader writes a merged catalog into the knowledge graph. Loading is
// idempotent: nodes merge by name and join edges by endpoints plus via_field,
// so re-running with an updated catalog refreshes properties without
// duplicating the graph. Two joins between the same table pair on different
// fields stay distinct edges.
type Loader struct {
	client *graph.Client
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(client *graph.Client, logger *zap.Logger) *Loader {
	return &Loader{
		client: client,
		logger: logger.Named("catalog-loader"),
	}
}

const (
	loadTablesQuery = `
UNWIND $tables AS table
MERGE (t:Table {name: table.name})
SET t.type = table.kind,
    t.business_description = table.description`

	loadColumnsQuery = `
UNWIND $columns AS col
MATCH (t:Table {name: col.table})
MERGE (t)-[:HAS_COLUMN]->(c:Column {name: col.name, table: col.table})
SET c += col.props`

	loadJoinsQuery = `
UNWIND $joins AS join
MATCH (from:Table {name: join.from_table})
MATCH (to:Table {name: join.to_table})
MERGE (from)-[j:JOINS_WITH {via_field: join.via_field}]->(to)
SET j.relationship_type = join.relationship_type`

	loadConceptsQuery = `
UNWIND $concepts AS concept
MERGE (k:Concept {name: concept.name})
SET k.definition = concept.description`

	loadConceptLinksQuery = `
UNWIND $links AS link
MATCH (k:Concept {name: link.concept})
MATCH (t:Table {name: link.table})
MERGE (k)-[r:RELATES_TO]->(t)
SET r.confidence = link.confidence`
)

// Load writes the full catalog in one write transaction.
func (l *Loader) Load(ctx context.Context, catalog *Catalog) error {
	tables, columns, joins := flattenTables(catalog.Tables)
	concepts, links := flattenConcepts(catalog.Concepts)

	_, err := l.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		steps := []struct {
			query  string
			params map[string]any
		}{
			{loadTablesQuery, map[string]any{"tables": tables}},
			{loadColumnsQuery, map[string]any{"columns": columns}},
			{loadJoinsQuery, map[string]any{"joins": joins}},
			{loadConceptsQuery, map[string]any{"concepts": concepts}},
			{loadConceptLinksQuery, map[string]any{"links": links}},
		}
		for _, step := range steps {
			if _, err := tx.Run(ctx, step.query, step.params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	l.logger.Info("catalog loaded",
		zap.Int("tables", len(tables)),
		zap.Int("columns", len(columns)),
		zap.Int("joins", len(joins)),
		zap.Int("concepts", len(concepts)))
	return nil
}

func flattenTables(defs []TableDef) (tables, columns, joins []map[string]any) {
	for _, table := range defs {
		tables = append(tables, map[string]any{
			"name":        table.Name,
			"kind":        table.Kind,
			"description": table.Description,
		})

		for _, col := range table.Columns {
			columns = append(columns, map[string]any{
				"table": table.Name,
				"name":  col.Name,
				"props": columnProps(col),
			})
		}

		for _, join := range table.Joins {
			relType := join.RelationshipType
			if relType == "" {
				relType = "many_to_one"
			}
			joins = append(joins, map[string]any{
				"from_table":        table.Name,
				"to_table":          join.ToTable,
				"via_field":         join.ViaField,
				"relationship_type": relType,
			})
		}
	}
	return tables, columns, joins
}

// columnProps builds the Column node property map. Empty enrichment fields
// are omitted so sparse catalogs produce sparse nodes.
func columnProps(col ColumnDef) map[string]any {
	props := map[string]any{
		"data_type": col.DataType,
	}
	setIfPresent := func(key, value string) {
		if value != "" {
			props[key] = value
		}
	}
	setIfPresent("semantic_type", col.SemanticType)
	setIfPresent("business_term", col.BusinessTerm)
	setIfPresent("business_definition", col.BusinessDefinition)
	setIfPresent("usage_notes", col.UsageNotes)
	setIfPresent("data_quality_note", col.DataQualityNote)
	setIfPresent("unit", col.Unit)
	if len(col.SampleValues) > 0 {
		props["sample_values"] = col.SampleValues
	}
	return props
}

func flattenConcepts(defs []ConceptDef) (concepts, links []map[string]any) {
	for _, concept := range defs {
		concepts = append(concepts, map[string]any{
			"name":        concept.Name,
			"description": concept.Description,
		})
		for _, link := range concept.Tables {
			confidence := link.Confidence
			if confidence == "" {
				confidence = "medium"
			}
			links = append(links, map[string]any{
				"concept":    concept.Name,
				"table":      link.Table,
				"confidence": confidence,
			})
		}
	}
	return concepts, links
}
