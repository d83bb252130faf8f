package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/metaquery-ai/metaquery-engine/pkg/auth"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
)

func observedAuditor() (*SecurityAuditor, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return NewSecurityAuditor(zap.New(core)), logs
}

func TestLogUnsafeSQL(t *testing.T) {
	auditor, logs := observedAuditor()

	auditor.LogUnsafeSQL(context.Background(), UnsafeSQLDetails{
		Question: "list agents",
		SQL:      "SELECT 1; DROP TABLE calls",
		Reason:   "multiple SQL statements",
	}, "10.0.0.7:4431")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, string(EventUnsafeSQL), fields["event_type"])
	assert.Equal(t, "critical", fields["severity"])
	assert.Equal(t, "10.0.0.7:4431", fields["client_ip"])
	assert.Equal(t, "multiple SQL statements", fields["reason"])
}

func TestLogUnsafeSQLTruncatesLongStatements(t *testing.T) {
	auditor, logs := observedAuditor()

	long := "SELECT '" + strings.Repeat("x", 500) + "'"
	auditor.LogUnsafeSQL(context.Background(), UnsafeSQLDetails{SQL: long}, "")

	fields := logs.All()[0].ContextMap()
	sqlField, ok := fields["sql"].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(sqlField), logging.MaxQueryLogLength+len("..."))
}

func TestLogUnsafeSQLIncludesUser(t *testing.T) {
	auditor, logs := observedAuditor()

	claims := &auth.Claims{Email: "analyst@example.com"}
	ctx := context.WithValue(context.Background(), auth.ClaimsKey, claims)

	auditor.LogUnsafeSQL(ctx, UnsafeSQLDetails{Question: "q"}, "")

	assert.Equal(t, "analyst@example.com", logs.All()[0].ContextMap()["user_id"])
}

func TestLogAuthFailure(t *testing.T) {
	auditor, logs := observedAuditor()

	auditor.LogAuthFailure("/api/query", "10.0.0.7:4431", "missing bearer token")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, string(EventAuthFailure), fields["event_type"])
	assert.Equal(t, "warning", fields["severity"])
}
