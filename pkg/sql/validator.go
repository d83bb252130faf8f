// Package sql validates model-generated SQL before it reaches a warehouse.
package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metaquery-ai/metaquery-engine/pkg/apperrors"
)

var (
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")
	// ErrNotReadOnly indicates the query is not a SELECT or WITH statement.
	ErrNotReadOnly = errors.New("only read-only SELECT or WITH statements are permitted")
	// ErrEmptyStatement indicates there was nothing left after normalization.
	ErrEmptyStatement = errors.New("empty SQL statement")
)

// ValidationResult contains the normalized SQL and any validation errors.
type ValidationResult struct {
	NormalizedSQL string
	Error         error
}

// ValidateGenerated runs the full safety gate on a generated statement and
// returns the normalized SQL ready for execution. Any failure is wrapped in
// apperrors.ErrUnsafeSQL so callers can classify it without inspecting text.
func ValidateGenerated(sqlQuery string) (string, error) {
	result := ValidateAndNormalize(sqlQuery)
	if result.Error != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrUnsafeSQL, result.Error)
	}

	if findings := CheckLiterals(result.NormalizedSQL); len(findings) > 0 {
		return "", fmt.Errorf("%w: injection pattern in string literal (fingerprint %s)",
			apperrors.ErrUnsafeSQL, findings[0].Fingerprint)
	}

	return result.NormalizedSQL, nil
}

// ValidateAndNormalize checks that SQL is a single read-only statement and
// strips the trailing semicolon.
//
// The validation order is:
// 1. Strip trailing semicolon and whitespace (normalize)
// 2. Check the statement starts with SELECT or WITH
// 3. Check for multiple statements (any remaining semicolons outside string literals)
func ValidateAndNormalize(sqlQuery string) ValidationResult {
	sqlQuery = strings.TrimSpace(sqlQuery)

	if sqlQuery == "" {
		return ValidationResult{Error: ErrEmptyStatement}
	}

	normalized := stripTrailingSemicolon(sqlQuery)

	if !isReadOnly(normalized) {
		return ValidationResult{Error: ErrNotReadOnly}
	}

	if hasSemicolonOutsideStrings(normalized) {
		return ValidationResult{Error: ErrMultipleStatements}
	}

	return ValidationResult{NormalizedSQL: normalized}
}

// isReadOnly reports whether the statement starts with SELECT or WITH. The
// prefix must be a whole word so "SELECTION" or "WITHDRAW" do not pass.
func isReadOnly(sqlQuery string) bool {
	upper := strings.ToUpper(sqlQuery)
	for _, prefix := range []string{"SELECT", "WITH"} {
		if !strings.HasPrefix(upper, prefix) {
			continue
		}
		rest := upper[len(prefix):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '(' {
			return true
		}
	}
	return false
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('').
			// A doubled quote exits and immediately re-enters on the next
			// quote, which correctly keeps us inside the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a trailing semicolon and any whitespace around it.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")

	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}

	return sqlQuery
}
