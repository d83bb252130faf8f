package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
)

func TestValidateAndNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "plain select",
			input: "SELECT agent_id, COUNT(*) FROM calls GROUP BY agent_id",
			want:  "SELECT agent_id, COUNT(*) FROM calls GROUP BY agent_id",
		},
		{
			name:  "cte",
			input: "WITH daily AS (SELECT 1) SELECT * FROM daily",
			want:  "WITH daily AS (SELECT 1) SELECT * FROM daily",
		},
		{
			name:  "trailing semicolon stripped",
			input: "SELECT 1;",
			want:  "SELECT 1",
		},
		{
			name:  "trailing semicolon with whitespace",
			input: "SELECT 1 ;  \n",
			want:  "SELECT 1",
		},
		{
			name:  "semicolon inside string literal",
			input: "SELECT * FROM calls WHERE note = 'resolved; follow up'",
			want:  "SELECT * FROM calls WHERE note = 'resolved; follow up'",
		},
		{
			name:  "lowercase select",
			input: "select 1",
			want:  "select 1",
		},
		{
			name:    "multiple statements",
			input:   "SELECT 1; DROP TABLE calls",
			wantErr: ErrMultipleStatements,
		},
		{
			name:    "update rejected",
			input:   "UPDATE calls SET duration = 0",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "delete rejected",
			input:   "DELETE FROM calls",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "select prefix word boundary",
			input:   "SELECTION_HELPER()",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "empty",
			input:   "   \n",
			wantErr: ErrEmptyStatement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAndNormalize(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, result.Error, tt.wantErr)
				return
			}
			require.NoError(t, result.Error)
			assert.Equal(t, tt.want, result.NormalizedSQL)
		})
	}
}

func TestValidateGenerated(t *testing.T) {
	normalized, err := ValidateGenerated("SELECT agent_name FROM agents WHERE center = 'north';")
	require.NoError(t, err)
	assert.Equal(t, "SELECT agent_name FROM agents WHERE center = 'north'", normalized)
}

func TestValidateGeneratedWrapsUnsafeSQL(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "ddl", input: "DROP TABLE calls"},
		{name: "stacked", input: "SELECT 1; SELECT 2"},
		{name: "injection in literal", input: "SELECT * FROM calls WHERE note = ''' OR 1=1 --'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateGenerated(tt.input)
			assert.ErrorIs(t, err, apperrors.ErrUnsafeSQL)
		})
	}
}
