package apperrors

import "errors"

var (
	// ErrNoTablesFound is returned at the orchestration boundary when the
	// retrieval pipeline completes but produces no tables. The user should be
	// asked to rephrase; this is distinct from a retrieval failure.
	ErrNoTablesFound = errors.New("no relevant tables found for the question")

	// ErrGraphQuery wraps graph store execution failures. Retrieval never
	// swallows these; they surface to the caller with the driver message.
	ErrGraphQuery = errors.New("graph query execution failed")

	// ErrQuerySynthesis wraps model failures during graph query synthesis.
	// Fatal for the current question, no retry.
	ErrQuerySynthesis = errors.New("graph query synthesis failed")

	// ErrSQLGeneration wraps model failures during SQL generation.
	ErrSQLGeneration = errors.New("SQL generation failed")

	// ErrUnsafeSQL is returned when generated SQL fails validation before
	// execution (not read-only, multiple statements, or injection pattern).
	ErrUnsafeSQL = errors.New("generated SQL rejected by safety checks")

	// ErrSessionNotFound is returned by session stores for unknown IDs.
	ErrSessionNotFound = errors.New("session not found")
)
