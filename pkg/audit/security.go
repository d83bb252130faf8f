// Package audit provides security audit logging for SIEM consumption.
// Security-relevant events are logged as structured JSON under a dedicated
// logger namespace so they can be filtered and alerted on independently of
// application logs.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/auth"
	"github.com/metaquery-ai/metaquery-engine/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventUnsafeSQL is logged when generated SQL fails the safety gate:
	// non-read-only statements, stacked statements, or injection patterns
	// smuggled through a question into string literals.
	EventUnsafeSQL SecurityEventType = "unsafe_sql_blocked"
	// EventAuthFailure is logged when a request presents an invalid token.
	EventAuthFailure SecurityEventType = "auth_failure"
)

// UnsafeSQLDetails contains specifics of a blocked statement.
type UnsafeSQLDetails struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
	Reason   string `json:"reason"`
}

// SecurityAuditor logs security events.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a security auditor under the "security_audit"
// logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogUnsafeSQL records a blocked generated statement. Logged at WARN with
// "critical" severity: the gate held, but a pattern of these for one user or
// question shape is worth investigating.
func (a *SecurityAuditor) LogUnsafeSQL(ctx context.Context, details UnsafeSQLDetails, clientIP string) {
	a.logger.Warn("security event",
		zap.String("event_type", string(EventUnsafeSQL)),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("severity", "critical"),
		zap.String("user_id", userFromContext(ctx)),
		zap.String("client_ip", clientIP),
		zap.String("question", details.Question),
		zap.String("sql", logging.SanitizeQuery(details.SQL)),
		zap.String("reason", details.Reason),
	)
}

// LogAuthFailure records a rejected request.
func (a *SecurityAuditor) LogAuthFailure(path, clientIP, reason string) {
	a.logger.Warn("security event",
		zap.String("event_type", string(EventAuthFailure)),
		zap.Time("timestamp", time.Now().UTC()),
		zap.String("severity", "warning"),
		zap.String("path", logging.SanitizeURI(path)),
		zap.String("client_ip", clientIP),
		zap.String("reason", reason),
	)
}

func userFromContext(ctx context.Context) string {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return ""
	}
	if claims.Email != "" {
		return claims.Email
	}
	return claims.Subject
}
