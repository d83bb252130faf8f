package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
	"github.com/metaquery-ai/metaquery-engine/pkg/retrieval"
	"github.com/metaquery-ai/metaquery-engine/pkg/session"
	"github.com/metaquery-ai/metaquery-engine/pkg/sqlgen"
	"github.com/metaquery-ai/metaquery-engine/pkg/summary"
	"github.com/metaquery-ai/metaquery-engine/pkg/warehouse"
)

func retrievedMetadata() *models.RetrievalResult {
	return &models.RetrievalResult{
		Concepts: []models.Concept{{Name: "Agent Performance"}},
		Tables: []models.Table{
			{Name: "calls", Kind: "fact", Columns: []models.Column{
				{Name: "agent_id", DataType: "STRING"},
				{Name: "duration_sec", DataType: "INT64"},
			}},
		},
		Joins: []models.JoinEdge{
			{FromTable: "calls", ToTable: "agents", OnField: []string{"agent_id"}, JoinType: models.JoinTypeManyToOne},
		},
	}
}

func answeringClient(generatedSQL string) *llm.MockClient {
	client := llm.NewMockClient()
	client.GenerateFunc = func(ctx context.Context, contextID string, vars map[string]string, temperature float64, maxTokens int) (string, error) {
		switch contextID {
		case prompts.ContextSQLGenerator:
			return "```sql\n" + generatedSQL + "\n```", nil
		case prompts.ContextSummary:
			return "Agents averaged two minutes per call.", nil
		default:
			return "", errors.New("unexpected context " + contextID)
		}
	}
	return client
}

func newTestOrchestrator(t *testing.T, retriever retrieval.MetadataService, client *llm.MockClient, executor warehouse.Executor, sessions session.Store) Orchestrator {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return New(Config{
		Retriever:    retriever,
		Generator:    sqlgen.NewGenerator(client, logger),
		Executor:     executor,
		Summarizer:   summary.NewSummarizer(client, logger),
		Sessions:     sessions,
		DatabaseType: "postgres",
	}, logger)
}

func TestProcessQuestionHappyPath(t *testing.T) {
	retriever := &retrieval.MockMetadataService{
		RetrieveFunc: func(ctx context.Context, question string) (*models.RetrievalResult, error) {
			return retrievedMetadata(), nil
		},
	}
	executor := &warehouse.MockExecutor{
		QueryFunc: func(ctx context.Context, sqlQuery string) (*warehouse.QueryResult, error) {
			return &warehouse.QueryResult{
				Columns:  []string{"agent_id", "avg_duration"},
				Rows:     []map[string]any{{"agent_id": "a1", "avg_duration": 120.5}},
				RowCount: 1,
			}, nil
		},
	}
	sessions := session.NewMemoryStore(time.Hour)
	o := newTestOrchestrator(t, retriever,
		answeringClient("SELECT agent_id, AVG(duration_sec) AS avg_duration FROM calls GROUP BY agent_id;"),
		executor, sessions)

	answer, err := o.ProcessQuestion(context.Background(), "average call duration per agent")

	require.NoError(t, err)
	assert.NotEmpty(t, answer.ID)
	assert.Equal(t, "average call duration per agent", answer.Question)
	// Trailing semicolon stripped by validation before execution.
	assert.Equal(t, "SELECT agent_id, AVG(duration_sec) AS avg_duration FROM calls GROUP BY agent_id", answer.SQL)
	assert.Equal(t, answer.SQL, executor.LastSQL)
	assert.Equal(t, 1, answer.Result.RowCount)
	assert.Equal(t, "Agents averaged two minutes per call.", answer.Summary)
	assert.False(t, answer.CreatedAt.IsZero())

	stored, err := sessions.Get(context.Background(), answer.ID)
	require.NoError(t, err)
	assert.Equal(t, answer.SQL, stored.SQL)
	assert.Equal(t, answer.Summary, stored.Summary)
}

func TestProcessQuestionNoTables(t *testing.T) {
	retriever := &retrieval.MockMetadataService{
		RetrieveFunc: func(ctx context.Context, question string) (*models.RetrievalResult, error) {
			return &models.RetrievalResult{}, nil
		},
	}
	o := newTestOrchestrator(t, retriever, answeringClient("SELECT 1"), &warehouse.MockExecutor{}, nil)

	_, err := o.ProcessQuestion(context.Background(), "quarterly sasquatch sightings")

	require.ErrorIs(t, err, apperrors.ErrNoTablesFound)
	assert.Contains(t, err.Error(), "rephrasing")
}

func TestProcessQuestionZeroRowsIsSuccess(t *testing.T) {
	retriever := &retrieval.MockMetadataService{
		RetrieveFunc: func(ctx context.Context, question string) (*models.RetrievalResult, error) {
			return retrievedMetadata(), nil
		},
	}
	executor := &warehouse.MockExecutor{
		QueryFunc: func(ctx context.Context, sqlQuery string) (*warehouse.QueryResult, error) {
			return &warehouse.QueryResult{Columns: []string{"agent_id"}, Rows: []map[string]any{}}, nil
		},
	}
	o := newTestOrchestrator(t, retriever, answeringClient("SELECT agent_id FROM calls WHERE 1=0"), executor, nil)

	answer, err := o.ProcessQuestion(context.Background(), "calls from the year 1800")

	require.NoError(t, err)
	assert.Equal(t, 0, answer.Result.RowCount)
	assert.Equal(t, summary.NoResultsMessage, answer.Summary)
}

func TestProcessQuestionRejectsUnsafeSQL(t *testing.T) {
	retriever := &retrieval.MockMetadataService{
		RetrieveFunc: func(ctx context.Context, question string) (*models.RetrievalResult, error) {
			return retrievedMetadata(), nil
		},
	}
	executor := &warehouse.MockExecutor{}
	o := newTestOrchestrator(t, retriever, answeringClient("SELECT 1; DROP TABLE calls"), executor, nil)

	_, err := o.ProcessQuestion(context.Background(), "anything")

	require.ErrorIs(t, err, apperrors.ErrUnsafeSQL)
	assert.Equal(t, 0, executor.QueryCalls)
}

func TestProcessQuestionCannotAnswerPropagates(t *testing.T) {
	retriever := &retrieval.MockMetadataService{
		RetrieveFunc: func(ctx context.Context, question string) (*models.RetrievalResult, error) {
			return retrievedMetadata(), nil
		},
	}
	client := llm.NewMockClient()
	client.GenerateFunc = func(ctx context.Context, contextID string, vars map[string]string, temperature float64, maxTokens int) (string, error) {
		return "Cannot answer: no revenue data in the metadata.", nil
	}
	o := newTestOrchestrator(t, retriever, client, &warehouse.MockExecutor{}, nil)

	_, err := o.ProcessQuestion(context.Background(), "total revenue")

	assert.ErrorIs(t, err, sqlgen.ErrCannotAnswer)
}

func TestProcessQuestionWarehouseFailure(t *testing.T) {
	retriever := &retrieval.MockMetadataService{
		RetrieveFunc: func(ctx context.Context, question string) (*models.RetrievalResult, error) {
			return retrievedMetadata(), nil
		},
	}
	executor := &warehouse.MockExecutor{
		QueryFunc: func(ctx context.Context, sqlQuery string) (*warehouse.QueryResult, error) {
			return nil, errors.New("relation \"calls\" does not exist")
		},
	}
	o := newTestOrchestrator(t, retriever, answeringClient("SELECT 1"), executor, nil)

	_, err := o.ProcessQuestion(context.Background(), "anything")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute generated SQL")
}

func TestProcessQuestionRetrievalFailure(t *testing.T) {
	retriever := &retrieval.MockMetadataService{
		RetrieveFunc: func(ctx context.Context, question string) (*models.RetrievalResult, error) {
			return nil, apperrors.ErrGraphQuery
		},
	}
	o := newTestOrchestrator(t, retriever, answeringClient("SELECT 1"), &warehouse.MockExecutor{}, nil)

	_, err := o.ProcessQuestion(context.Background(), "anything")

	assert.ErrorIs(t, err, apperrors.ErrGraphQuery)
}
