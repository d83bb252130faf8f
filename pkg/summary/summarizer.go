// Package summary produces a short natural-language answer from query
// results.
package summary

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
	"github.com/metaquery-ai/metaquery-engine/pkg/warehouse"
)

const (
	summaryTemperature = 0.3
	summaryMaxTokens   = 500

	// maxRowsInPrompt bounds how many result rows are shown to the model.
	maxRowsInPrompt = 10
)

// NoResultsMessage is the fixed answer for queries that ran successfully but
// matched nothing.
const NoResultsMessage = "The query executed successfully but returned no results. There may be no data matching the question's criteria."

// Summarizer turns a result set into a few sentences of prose. A model
// failure degrades to a deterministic summary rather than failing the
// request; by this point the user already has correct SQL and rows.
type Summarizer struct {
	client llm.Client
	logger *zap.Logger
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(client llm.Client, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		client: client,
		logger: logger.Named("summarizer"),
	}
}

// Summarize returns the answer text for the question given the executed SQL
// and its results.
func (s *Summarizer) Summarize(ctx context.Context, question, sqlQuery string, result *warehouse.QueryResult, concepts []models.Concept) string {
	if result == nil || result.RowCount == 0 {
		return NoResultsMessage
	}

	response, err := s.client.Generate(ctx, prompts.ContextSummary, map[string]string{
		"user_question":    question,
		"query_results":    FormatResults(result),
		"metadata_context": formatConceptContext(concepts),
		"sql_query":        sqlQuery,
		"row_count":        strconv.Itoa(result.RowCount),
	}, summaryTemperature, summaryMaxTokens)
	if err != nil {
		s.logger.Warn("summary model call failed, using fallback", zap.Error(err))
		return fallbackSummary(result)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return fallbackSummary(result)
	}
	return response
}

// FormatResults renders up to maxRowsInPrompt rows as a pipe-separated text
// table for the summary prompt.
func FormatResults(result *warehouse.QueryResult) string {
	var text strings.Builder
	text.WriteString(strings.Join(result.Columns, " | "))
	text.WriteString("\n")

	shown := result.Rows
	if len(shown) > maxRowsInPrompt {
		shown = shown[:maxRowsInPrompt]
	}

	for _, row := range shown {
		values := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			values[i] = formatValue(row[col])
		}
		text.WriteString(strings.Join(values, " | "))
		text.WriteString("\n")
	}

	if len(result.Rows) > maxRowsInPrompt {
		text.WriteString(fmt.Sprintf("... and %d more rows\n", len(result.Rows)-maxRowsInPrompt))
	}

	return text.String()
}

func formatValue(value any) string {
	if value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", value)
}

func formatConceptContext(concepts []models.Concept) string {
	if len(concepts) == 0 {
		return ""
	}
	names := make([]string, len(concepts))
	for i, c := range concepts {
		names[i] = c.Name
	}
	return "Business concepts involved: " + strings.Join(names, ", ")
}

// fallbackSummary is the deterministic answer used when the model is
// unavailable.
func fallbackSummary(result *warehouse.QueryResult) string {
	if result.RowCount == 1 {
		return "The query returned 1 row. See the result data for details."
	}
	return fmt.Sprintf("The query returned %d rows. See the result data for details.", result.RowCount)
}
