package graph

import (
	"context"

	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// MetadataRow is one record of a metadata retrieval query. ColumnsList and
// JoinsList carry the raw graph values; normalization and merging happen in
// the retrieval stage.
type MetadataRow struct {
	TableName        string
	TableType        string
	TableDescription string

	// ColumnsList holds column property maps (map[string]any) or, from sparse
	// catalogs, bare column name strings.
	ColumnsList []any

	JoinsList []JoinDescriptor
}

// JoinDescriptor is one join edge as the graph reports it. ViaField may be a
// single string or a sequence; descriptors missing ToTable or ViaField are
// malformed and are discarded during merging, not here.
type JoinDescriptor struct {
	ToTable          string
	ViaField         any
	RelationshipType string
}

// Store is the read interface over the metadata graph consumed by the
// retrieval pipeline. One Concepts call, one table-narrowing call, and one Run
// call are issued per question.
type Store interface {
	// Concepts returns the full concept catalog with related table counts,
	// ordered by concept name.
	Concepts(ctx context.Context) ([]models.Concept, error)

	// TablesForConcepts returns candidate tables linked to any of the named
	// concepts, most confident first, capped at CandidateTableLimit.
	TablesForConcepts(ctx context.Context, conceptNames []string) ([]models.CandidateTable, error)

	// AllTables returns up to CandidateTableLimit tables from the whole
	// catalog, used when no concepts were identified.
	AllTables(ctx context.Context) ([]models.CandidateTable, error)

	// Run executes a synthesized metadata query. Execution failures are
	// returned as errors wrapping apperrors.ErrGraphQuery, never swallowed.
	Run(ctx context.Context, query string) ([]MetadataRow, error)
}

// CandidateTableLimit caps the narrowed-schema listing injected into the
// query-synthesis prompt.
const CandidateTableLimit = 60
