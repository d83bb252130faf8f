package models

// CompactResult is the size-bounded metadata payload that crosses the boundary
// to SQL generation. Tables keep every enrichment field present in the source;
// joins are capped and already in priority order.
type CompactResult struct {
	Tables []Table    `json:"tables"`
	Joins  []JoinEdge `json:"joins"`
}

// Caps applied when compacting metadata for the SQL generation prompt.
const (
	MaxColumnsPerTable = 200
	MaxJoinsPerResult  = 10

	MaxBusinessDefinitionLen = 100
	MaxUsageNotesLen         = 150
	MaxSampleValues          = 3
)
