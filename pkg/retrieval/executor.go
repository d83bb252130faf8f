package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/graph"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// Executor runs a synthesized metadata query against the graph store and
// merges the result records: tables deduplicated by name with columns unioned,
// join edges consolidated per ordered table pair.
type Executor struct {
	store  graph.Store
	logger *zap.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(store graph.Store, logger *zap.Logger) *Executor {
	return &Executor{
		store:  store,
		logger: logger.Named("graph-executor"),
	}
}

// Execute runs the query and returns the merged tables and joins. Concepts
// are attached by the caller. A graph execution failure is returned as a
// structured error, never swallowed.
func (e *Executor) Execute(ctx context.Context, query string) (*models.RetrievalResult, error) {
	rows, err := e.store.Run(ctx, query)
	if err != nil {
		return nil, err
	}

	result := MergeRows(rows)

	e.logger.Info("retrieved metadata",
		zap.Int("tables", len(result.Tables)),
		zap.Int("joins", len(result.Joins)))
	return result, nil
}

// MergeRows merges raw metadata records into a RetrievalResult.
//
// Tables are keyed by name: the first sighting creates the table with its
// column list as-is; later sightings append only columns whose name is not
// already present (first occurrence wins on conflicting payload).
//
// Joins are keyed by the ordered (from_table, to_table) pair, from_table
// always being the current record's table. Descriptors missing a target table
// or join field are discarded silently. Fields accumulate across sightings in
// first-seen order with no duplicates; the relationship type of the first
// sighting sticks, defaulting to many_to_one when absent.
func MergeRows(rows []graph.MetadataRow) *models.RetrievalResult {
	tableIndex := make(map[string]int)
	tables := make([]models.Table, 0, len(rows))

	type joinKey struct{ from, to string }
	joinIndex := make(map[joinKey]int)
	joins := make([]models.JoinEdge, 0)

	for _, row := range rows {
		if idx, seen := tableIndex[row.TableName]; seen {
			mergeColumns(&tables[idx], row.ColumnsList)
		} else {
			kind := row.TableType
			if kind == "" {
				kind = "table"
			}
			tableIndex[row.TableName] = len(tables)
			tables = append(tables, models.Table{
				Name:        row.TableName,
				Kind:        kind,
				Description: row.TableDescription,
				Columns:     parseColumns(row.ColumnsList),
			})
		}

		for _, descriptor := range row.JoinsList {
			fields := normalizeFields(descriptor.ViaField)
			if descriptor.ToTable == "" || len(fields) == 0 {
				continue // malformed edge, not an error
			}

			key := joinKey{from: row.TableName, to: descriptor.ToTable}
			if idx, seen := joinIndex[key]; seen {
				for _, field := range fields {
					appendField(&joins[idx], field)
				}
				continue
			}

			joinType := descriptor.RelationshipType
			if joinType == "" {
				joinType = models.JoinTypeManyToOne
			}
			edge := models.JoinEdge{
				FromTable: row.TableName,
				ToTable:   descriptor.ToTable,
				JoinType:  joinType,
			}
			for _, field := range fields {
				appendField(&edge, field)
			}
			joinIndex[key] = len(joins)
			joins = append(joins, edge)
		}
	}

	return &models.RetrievalResult{Tables: tables, Joins: joins}
}

func mergeColumns(table *models.Table, rawColumns []any) {
	existing := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		existing[col.Name] = true
	}
	for _, col := range parseColumns(rawColumns) {
		if !existing[col.Name] {
			table.Columns = append(table.Columns, col)
			existing[col.Name] = true
		}
	}
}

func appendField(edge *models.JoinEdge, field string) {
	for _, f := range edge.OnField {
		if f == field {
			return
		}
	}
	edge.OnField = append(edge.OnField, field)
}

// normalizeFields coerces a raw via_field value (a string or a sequence) into
// a string slice. Unusable values produce an empty slice, marking the
// descriptor malformed.
func normalizeFields(via any) []string {
	switch v := via.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		fields := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				fields = append(fields, s)
			}
		}
		return fields
	default:
		return nil
	}
}

// parseColumns converts raw graph column values into Columns. Property maps
// carry the full enrichment payload; bare strings are sparse-catalog column
// names with an unknown type.
func parseColumns(raw []any) []models.Column {
	columns := make([]models.Column, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case map[string]any:
			columns = append(columns, parseColumnMap(v))
		case string:
			columns = append(columns, models.Column{Name: v, DataType: "unknown"})
		}
	}
	return columns
}

func parseColumnMap(m map[string]any) models.Column {
	col := models.Column{
		Name:     stringProp(m, "name"),
		DataType: stringProp(m, "data_type"),
	}
	if col.DataType == "" {
		col.DataType = stringProp(m, "type")
	}

	col.SemanticType = stringProp(m, "semantic_type")
	col.BusinessTerm = stringProp(m, "business_term")
	col.BusinessDefinition = stringProp(m, "business_definition")
	col.UsageNotes = stringProp(m, "usage_notes")
	col.DataQualityNote = stringProp(m, "data_quality_note")
	col.Unit = stringProp(m, "unit")

	if samples, ok := m["sample_values"].([]any); ok {
		for _, s := range samples {
			if str, ok := s.(string); ok {
				col.SampleValues = append(col.SampleValues, str)
			}
		}
	}
	return col
}

func stringProp(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
