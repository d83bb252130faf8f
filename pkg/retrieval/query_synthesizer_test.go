package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
)

func TestSynthesizePassesPromptVariables(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateFunc = func(_ context.Context, _ string, _ map[string]string, _ float64, _ int) (string, error) {
		return "MATCH (t:Table) RETURN t", nil
	}
	synthesizer := NewQuerySynthesizer(client, zaptest.NewLogger(t))

	concepts := []models.Concept{{Name: "Call Volume"}, {Name: "Agent Performance"}}
	query, err := synthesizer.Synthesize(context.Background(), "calls per agent", "- calls: daily records", concepts)

	require.NoError(t, err)
	assert.Equal(t, "MATCH (t:Table) RETURN t", query)
	assert.Equal(t, prompts.ContextMetadataGenerator, client.LastContextID)
	assert.Equal(t, "calls per agent", client.LastVariables["user_question"])
	assert.Equal(t, "- calls: daily records", client.LastVariables["schema_context"])
	assert.Contains(t, client.LastVariables["concept_hint"], "Call Volume, Agent Performance")
}

func TestSynthesizeStripsFencedWrapper(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateFunc = func(_ context.Context, _ string, _ map[string]string, _ float64, _ int) (string, error) {
		return "```cypher\nMATCH (t:Table) RETURN t\n```", nil
	}
	synthesizer := NewQuerySynthesizer(client, zaptest.NewLogger(t))

	query, err := synthesizer.Synthesize(context.Background(), "q", "", nil)

	require.NoError(t, err)
	assert.Equal(t, "MATCH (t:Table) RETURN t", query)
}

func TestSynthesizeWrapsTransportError(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateFunc = func(_ context.Context, _ string, _ map[string]string, _ float64, _ int) (string, error) {
		return "", errors.New("connection reset")
	}
	synthesizer := NewQuerySynthesizer(client, zaptest.NewLogger(t))

	_, err := synthesizer.Synthesize(context.Background(), "q", "", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQuerySynthesis)
	assert.Contains(t, err.Error(), "connection reset")
}
