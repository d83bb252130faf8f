// Package models defines the metadata entities exchanged between the graph
// catalog, the retrieval pipeline, and the SQL generation stage.
package models

// Concept is a named business-level grouping spanning one or more physical
// tables. Concepts are loaded once per session from the graph catalog and are
// read-only at query time.
type Concept struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	RelatedTableCount int    `json:"table_count"`

	// RelevanceScore is set only by the keyword fallback path of concept
	// selection. Zero for model-selected concepts.
	RelevanceScore int `json:"relevance_score,omitempty"`
}

// Column describes a single warehouse column. Required fields are Name and
// DataType; everything else is enrichment that may be absent from the catalog.
// Absent enrichment is omitted from serialized output, so downstream consumers
// must not assume key presence.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"type"`

	SemanticType       string   `json:"semantic_type,omitempty"`
	SampleValues       []string `json:"sample_values,omitempty"`
	BusinessTerm       string   `json:"business_term,omitempty"`
	BusinessDefinition string   `json:"business_definition,omitempty"`
	UsageNotes         string   `json:"usage_notes,omitempty"`
	DataQualityNote    string   `json:"data_quality_note,omitempty"`
	Unit               string   `json:"unit,omitempty"`
}

// Table is a physical warehouse table with its columns. Within one retrieval
// result a table name appears at most once; duplicate sightings during graph
// traversal are merged with columns unioned by name.
type Table struct {
	Name        string   `json:"name"`
	Kind        string   `json:"type"`
	Description string   `json:"business_description"`
	Columns     []Column `json:"columns"`
}

// JoinEdge is a potential SQL join path between two tables. At most one edge
// exists per ordered (FromTable, ToTable) pair in a retrieval result; multiple
// join fields between the same pair are consolidated into OnField with
// insertion order preserved and no duplicates.
type JoinEdge struct {
	FromTable     string   `json:"from_table"`
	ToTable       string   `json:"to_table"`
	OnField       []string `json:"on_field"`
	JoinType      string   `json:"join_type"`
	PriorityScore int      `json:"priority_score,omitempty"`
}

// JoinTypeManyToOne is the default relationship type assumed when a join
// descriptor in the graph carries none.
const JoinTypeManyToOne = "many_to_one"

// CandidateTable is one row of the narrowed-schema listing produced between
// concept selection and graph query synthesis. It hints at likely tables; it
// does not decide final table membership.
type CandidateTable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ConceptName string `json:"concept,omitempty"`
	Confidence  string `json:"confidence,omitempty"`
}

// RetrievalResult is the unit handed to the SQL generation stage. It is
// constructed fresh per question and discarded after use.
type RetrievalResult struct {
	Tables   []Table    `json:"tables"`
	Joins    []JoinEdge `json:"joins"`
	Concepts []Concept  `json:"concepts"`
}
