package retrieval

import (
	"fmt"
	"strings"

	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// Compact bounds the size of a retrieval result for the SQL generation
// prompt. Columns are kept in order and truncated only beyond
// maxColumnsPerTable; every enrichment field present in the source survives,
// with the length caps on definitions and usage notes re-enforced here in
// case the catalog was loaded without them. Joins keep their priority order
// and are capped at MaxJoinsPerResult.
func Compact(result *models.RetrievalResult, maxColumnsPerTable int) *models.CompactResult {
	if maxColumnsPerTable <= 0 {
		maxColumnsPerTable = models.MaxColumnsPerTable
	}

	compact := &models.CompactResult{
		Tables: make([]models.Table, 0, len(result.Tables)),
	}

	for _, table := range result.Tables {
		columns := table.Columns
		if len(columns) > maxColumnsPerTable {
			columns = columns[:maxColumnsPerTable]
		}

		compacted := make([]models.Column, len(columns))
		for i, col := range columns {
			compacted[i] = compactColumn(col)
		}

		kind := table.Kind
		if kind == "" {
			kind = "table"
		}
		compact.Tables = append(compact.Tables, models.Table{
			Name:        table.Name,
			Kind:        kind,
			Description: table.Description,
			Columns:     compacted,
		})
	}

	joins := result.Joins
	if len(joins) > models.MaxJoinsPerResult {
		joins = joins[:models.MaxJoinsPerResult]
	}
	compact.Joins = append(compact.Joins, joins...)

	return compact
}

func compactColumn(col models.Column) models.Column {
	if len(col.BusinessDefinition) > models.MaxBusinessDefinitionLen {
		col.BusinessDefinition = col.BusinessDefinition[:models.MaxBusinessDefinitionLen]
	}
	if len(col.UsageNotes) > models.MaxUsageNotesLen {
		col.UsageNotes = col.UsageNotes[:models.MaxUsageNotesLen]
	}
	if len(col.SampleValues) > models.MaxSampleValues {
		col.SampleValues = col.SampleValues[:models.MaxSampleValues]
	}
	return col
}

// FormatJoinHints renders the human-readable join block for the SQL
// generation prompt: one numbered entry per edge with explicit
// single-character-alias join syntax, or a notice that no joins exist.
func FormatJoinHints(joins []models.JoinEdge) string {
	if len(joins) == 0 {
		return "NO JOINS AVAILABLE - Query single table only.\n"
	}

	var hints strings.Builder
	hints.WriteString("AVAILABLE JOINS (use EXACT syntax below):\n\n")

	for i, join := range joins {
		fromAlias := tableAlias(join.FromTable)
		toAlias := tableAlias(join.ToTable)

		conditions := make([]string, 0, len(join.OnField))
		for _, field := range join.OnField {
			conditions = append(conditions, fmt.Sprintf("%s.%s = %s.%s", fromAlias, field, toAlias, field))
		}

		hints.WriteString(fmt.Sprintf("%d. %s -> %s\n", i+1, join.FromTable, join.ToTable))
		hints.WriteString(fmt.Sprintf("   USE THIS SQL: JOIN %s %s ON %s\n\n",
			join.ToTable, toAlias, strings.Join(conditions, " AND ")))
	}

	hints.WriteString("If the join you need is NOT listed above, query a SINGLE table only.\n")
	hints.WriteString("DO NOT make up joins. Use the EXACT columns from 'USE THIS SQL' above.\n")
	return hints.String()
}

// tableAlias derives the single-character alias used in join hints: the first
// letter of the table name's first underscore-separated word.
func tableAlias(tableName string) string {
	first, _, _ := strings.Cut(tableName, "_")
	if first == "" {
		return "t"
	}
	return strings.ToLower(first[:1])
}
