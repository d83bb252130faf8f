package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
)

const (
	synthesisTemperature = 0
	synthesisMaxTokens   = 2000
)

// QuerySynthesizer turns the question, the narrowed schema listing, and the
// identified concepts into a graph query retrieving tables, columns, and join
// edges in one pass. A model failure here is fatal for the current question;
// it propagates to the caller without retry.
type QuerySynthesizer struct {
	client llm.Client
	logger *zap.Logger
}

// NewQuerySynthesizer creates a QuerySynthesizer.
func NewQuerySynthesizer(client llm.Client, logger *zap.Logger) *QuerySynthesizer {
	return &QuerySynthesizer{
		client: client,
		logger: logger.Named("query-synthesizer"),
	}
}

// Synthesize returns the metadata retrieval query for the question. A single
// fenced-code wrapper (language-tagged or bare) is stripped from the model
// response if present.
func (s *QuerySynthesizer) Synthesize(ctx context.Context, question, schemaHint string, concepts []models.Concept) (string, error) {
	response, err := s.client.Generate(ctx, prompts.ContextMetadataGenerator, map[string]string{
		"user_question":  question,
		"schema_context": schemaHint,
		"concept_hint":   prompts.BuildConceptHint(concepts),
	}, synthesisTemperature, synthesisMaxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrQuerySynthesis, err)
	}

	query := llm.StripCodeFence(response)
	s.logger.Debug("synthesized metadata query", zap.String("query", logging.SanitizeQuery(query)))
	return query, nil
}
