package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

func testCatalog() []models.Concept {
	return []models.Concept{
		{Name: "Agent Performance", Description: "KPIs and scorecards for call center agents"},
		{Name: "Customer Sentiment", Description: "Survey scores and sentiment trends"},
		{Name: "Device Activations", Description: "Device and equipment activation volumes"},
	}
}

func TestSelectEmptyCatalogSkipsModel(t *testing.T) {
	mock := llm.NewMockClient()
	selector := NewConceptSelector(mock, zaptest.NewLogger(t))

	got := selector.Select(context.Background(), "any question", nil)

	assert.Empty(t, got)
	assert.Zero(t, mock.GenerateCalls)
}

func TestSelectModelPath(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error) {
		return `["Customer Sentiment", "Unknown Concept", "Agent Performance"]`, nil
	}
	selector := NewConceptSelector(mock, zaptest.NewLogger(t))

	got := selector.Select(context.Background(), "how do agents affect sentiment?", testCatalog())

	// Unknown names dropped silently, survivors in catalog order.
	require.Len(t, got, 2)
	assert.Equal(t, "Agent Performance", got[0].Name)
	assert.Equal(t, "Customer Sentiment", got[1].Name)
	assert.Equal(t, 1, mock.GenerateCalls)
}

func TestSelectModelPathFencedResponse(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error) {
		return "```json\n[\"Device Activations\"]\n```\nThese cover the question.", nil
	}
	selector := NewConceptSelector(mock, zaptest.NewLogger(t))

	got := selector.Select(context.Background(), "device activations last month", testCatalog())

	require.Len(t, got, 1)
	assert.Equal(t, "Device Activations", got[0].Name)
}

func TestSelectFallbackOnModelError(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error) {
		return "", errors.New("model unreachable")
	}
	selector := NewConceptSelector(mock, zaptest.NewLogger(t))

	got := selector.Select(context.Background(), "agent performance by call center", testCatalog())

	// "Agent Performance": 2 name-word overlaps (+20) + substring (+15) +
	// description overlaps ("agents" doesn't match "agent"; "call" and
	// "center" match) (+4) = 39. "Customer Sentiment": no overlap, below
	// threshold. "Device Activations": no overlap.
	require.Len(t, got, 1)
	assert.Equal(t, "Agent Performance", got[0].Name)
	assert.Equal(t, 39, got[0].RelevanceScore)
}

func TestSelectFallbackOnWrongShape(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, contextID string, variables map[string]string, temperature float64, maxTokens int) (string, error) {
		return `"Agent Performance"`, nil
	}
	selector := NewConceptSelector(mock, zaptest.NewLogger(t))

	got := selector.Select(context.Background(), "agent performance summary", testCatalog())

	require.Len(t, got, 1)
	assert.Equal(t, "Agent Performance", got[0].Name)
	assert.Positive(t, got[0].RelevanceScore)
}

func TestKeywordFallbackThresholdAndCap(t *testing.T) {
	catalog := []models.Concept{
		{Name: "Churn", Description: ""},                        // word overlap + substring = 25
		{Name: "Revenue", Description: "billing and churn"},     // desc overlap only = 2, below threshold
		{Name: "Churn Drivers", Description: "why churn rises"}, // 10 + 2 = 12
	}

	got := keywordFallback("churn this quarter", catalog)

	require.Len(t, got, 2)
	assert.Equal(t, "Churn", got[0].Name)
	assert.Equal(t, 25, got[0].RelevanceScore)
	assert.Equal(t, "Churn Drivers", got[1].Name)
	assert.Equal(t, 12, got[1].RelevanceScore)
}

func TestKeywordFallbackStableTiesAndTopFive(t *testing.T) {
	catalog := make([]models.Concept, 0, 7)
	names := []string{"Sales One", "Sales Two", "Sales Three", "Sales Four", "Sales Five", "Sales Six", "Sales Seven"}
	for _, n := range names {
		catalog = append(catalog, models.Concept{Name: n})
	}

	got := keywordFallback("sales report", catalog)

	// All score 10 (one shared word); ties keep catalog order, capped at 5.
	require.Len(t, got, 5)
	for i := range got {
		assert.Equal(t, names[i], got[i].Name)
		assert.Equal(t, 10, got[i].RelevanceScore)
	}
}
