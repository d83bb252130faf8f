// Package sqlgen turns compacted table metadata into a warehouse SQL query
// via the model.
package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
	"github.com/metaquery-ai/metaquery-engine/pkg/retrieval"
)

const (
	generationTemperature = 0
	generationMaxTokens   = 2000
)

// ErrCannotAnswer indicates the model declined because the metadata does not
// cover the question. The message carries the model's explanation.
var ErrCannotAnswer = errors.New("question not answerable from available metadata")

// Generator produces SQL for a question from a compacted retrieval result.
type Generator struct {
	client llm.Client
	logger *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		logger: logger.Named("sql-generator"),
	}
}

// Generate returns a single SQL statement for the question. The statement is
// extracted from the model response but NOT validated here; callers run it
// through the sql package gate before execution.
func (g *Generator) Generate(ctx context.Context, question string, compact *models.CompactResult, databaseType string) (string, error) {
	response, err := g.client.Generate(ctx, prompts.ContextSQLGenerator, map[string]string{
		"user_question": question,
		"metadata":      FormatMetadata(compact),
		"joins":         retrieval.FormatJoinHints(compact.Joins),
		"database":      databaseType,
	}, generationTemperature, generationMaxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrSQLGeneration, err)
	}

	sqlQuery, err := ExtractSQL(response)
	if err != nil {
		return "", err
	}

	g.logger.Info("generated SQL", zap.String("sql", logging.SanitizeQuery(sqlQuery)))
	return sqlQuery, nil
}

// ExtractSQL pulls the SQL statement out of a model response. It accepts a
// sql-tagged code fence, a bare fence, or a raw statement starting with
// SELECT or WITH. A "Cannot answer:" reply becomes ErrCannotAnswer with the
// model's explanation attached; anything else unrecognizable is
// ErrSQLGeneration.
func ExtractSQL(response string) (string, error) {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "Cannot answer:") {
		reason := strings.TrimSpace(strings.TrimPrefix(trimmed, "Cannot answer:"))
		return "", fmt.Errorf("%w: %s", ErrCannotAnswer, reason)
	}

	if fenced, ok := extractFenced(trimmed); ok {
		trimmed = fenced
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", fmt.Errorf("%w: response contains no SQL statement", apperrors.ErrSQLGeneration)
	}

	return trimmed, nil
}

// extractFenced returns the contents of the first code fence when the
// response is fenced, preferring a sql-tagged fence.
func extractFenced(response string) (string, bool) {
	start := strings.Index(response, "```sql")
	offset := len("```sql")
	if start == -1 {
		start = strings.Index(response, "```")
		offset = len("```")
	}
	if start == -1 {
		return "", false
	}

	body := response[start+offset:]
	end := strings.Index(body, "```")
	if end == -1 {
		return strings.TrimSpace(body), true
	}
	return strings.TrimSpace(body[:end]), true
}

// FormatMetadata renders compacted tables as the metadata block for the SQL
// generation prompt. Every enrichment present on a column is included; empty
// fields are omitted rather than rendered as placeholders.
func FormatMetadata(compact *models.CompactResult) string {
	var metadata strings.Builder

	for i, table := range compact.Tables {
		if i > 0 {
			metadata.WriteString("\n")
		}
		metadata.WriteString(fmt.Sprintf("### %s (%s)\n", table.Name, table.Kind))
		if table.Description != "" {
			metadata.WriteString(table.Description + "\n")
		}
		for _, col := range table.Columns {
			metadata.WriteString(formatColumn(col))
		}
	}

	return metadata.String()
}

func formatColumn(col models.Column) string {
	var line strings.Builder
	line.WriteString(fmt.Sprintf("- %s (%s)", col.Name, col.DataType))

	if col.BusinessTerm != "" {
		line.WriteString(" | " + col.BusinessTerm)
	}
	if col.BusinessDefinition != "" {
		line.WriteString(": " + col.BusinessDefinition)
	}
	if col.SemanticType != "" {
		line.WriteString(" [" + col.SemanticType + "]")
	}
	if col.Unit != "" {
		line.WriteString(" (unit: " + col.Unit + ")")
	}
	if col.UsageNotes != "" {
		line.WriteString(" | usage: " + col.UsageNotes)
	}
	if col.DataQualityNote != "" {
		line.WriteString(" | quality: " + col.DataQualityNote)
	}
	if len(col.SampleValues) > 0 {
		line.WriteString(" | samples: " + strings.Join(col.SampleValues, ", "))
	}

	line.WriteString("\n")
	return line.String()
}
