// Package orchestrator runs the full question-to-answer pipeline: metadata
// retrieval, SQL generation, validation, warehouse execution, and
// summarization.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/retrieval"
	"github.com/metaquery-ai/metaquery-engine/pkg/session"
	"github.com/metaquery-ai/metaquery-engine/pkg/sql"
	"github.com/metaquery-ai/metaquery-engine/pkg/sqlgen"
	"github.com/metaquery-ai/metaquery-engine/pkg/summary"
	"github.com/metaquery-ai/metaquery-engine/pkg/warehouse"
)

// Answer is the complete response to one business question.
type Answer struct {
	ID        string                 `json:"id"`
	Question  string                 `json:"question"`
	Concepts  []models.Concept       `json:"concepts,omitempty"`
	SQL       string                 `json:"sql"`
	Result    *warehouse.QueryResult `json:"result"`
	Summary   string                 `json:"summary"`
	CreatedAt time.Time              `json:"created_at"`
}

// Orchestrator answers natural-language questions against the warehouse.
type Orchestrator interface {
	ProcessQuestion(ctx context.Context, question string) (*Answer, error)
}

type orchestrator struct {
	retriever    retrieval.MetadataService
	generator    *sqlgen.Generator
	executor     warehouse.Executor
	summarizer   *summary.Summarizer
	sessions     session.Store
	databaseType string
	logger       *zap.Logger
}

// Config collects the orchestrator's collaborators.
type Config struct {
	Retriever    retrieval.MetadataService
	Generator    *sqlgen.Generator
	Executor     warehouse.Executor
	Summarizer   *summary.Summarizer
	Sessions     session.Store
	DatabaseType string
}

// New creates an Orchestrator.
func New(cfg Config, logger *zap.Logger) Orchestrator {
	return &orchestrator{
		retriever:    cfg.Retriever,
		generator:    cfg.Generator,
		executor:     cfg.Executor,
		summarizer:   cfg.Summarizer,
		sessions:     cfg.Sessions,
		databaseType: cfg.DatabaseType,
		logger:       logger.Named("orchestrator"),
	}
}

// NewFromClients builds the full pipeline from a graph store, model client,
// and warehouse executor.
func NewFromClients(store retrieval.MetadataService, client llm.Client, executor warehouse.Executor, sessions session.Store, databaseType string, logger *zap.Logger) Orchestrator {
	return New(Config{
		Retriever:    store,
		Generator:    sqlgen.NewGenerator(client, logger),
		Executor:     executor,
		Summarizer:   summary.NewSummarizer(client, logger),
		Sessions:     sessions,
		DatabaseType: databaseType,
	}, logger)
}

var _ Orchestrator = (*orchestrator)(nil)

func (o *orchestrator) ProcessQuestion(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()

	retrieved, err := o.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	if len(retrieved.Tables) == 0 {
		return nil, fmt.Errorf("%w: try rephrasing with the table, metric, or business term you are interested in", apperrors.ErrNoTablesFound)
	}

	compact := retrieval.Compact(retrieved, models.MaxColumnsPerTable)

	generated, err := o.generator.Generate(ctx, question, compact, o.databaseType)
	if err != nil {
		return nil, err
	}

	validated, err := sql.ValidateGenerated(generated)
	if err != nil {
		return nil, err
	}

	result, err := o.executor.Query(ctx, validated)
	if err != nil {
		return nil, fmt.Errorf("execute generated SQL: %w", err)
	}

	answer := &Answer{
		ID:        uuid.NewString(),
		Question:  question,
		Concepts:  retrieved.Concepts,
		SQL:       validated,
		Result:    result,
		Summary:   o.summarizer.Summarize(ctx, question, validated, result, retrieved.Concepts),
		CreatedAt: time.Now().UTC(),
	}

	if o.sessions != nil {
		if err := o.sessions.Put(ctx, toRecord(answer)); err != nil {
			// The user already has their answer; losing the session copy is
			// not worth failing the request.
			o.logger.Warn("failed to store session record", zap.Error(err), zap.String("id", answer.ID))
		}
	}

	o.logger.Info("answered question",
		zap.String("id", answer.ID),
		zap.Int("tables", len(retrieved.Tables)),
		zap.Int("rows", result.RowCount),
		zap.Duration("duration", time.Since(start)))
	return answer, nil
}

func toRecord(answer *Answer) *session.Record {
	return &session.Record{
		ID:        answer.ID,
		Question:  answer.Question,
		Concepts:  answer.Concepts,
		SQL:       answer.SQL,
		Result:    answer.Result,
		Summary:   answer.Summary,
		CreatedAt: answer.CreatedAt,
	}
}
