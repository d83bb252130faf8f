// Package catalog loads the three layers of the metadata knowledge graph
// from files: the physical schema, the business-context enrichment, and the
// concept ontology.
package catalog

// Catalog is the fully merged graph content ready to load.
type Catalog struct {
	Tables   []TableDef   `yaml:"tables" json:"tables"`
	Concepts []ConceptDef `yaml:"concepts" json:"concepts"`
}

// TableDef describes one warehouse table and its outgoing joins.
type TableDef struct {
	Name        string      `yaml:"name" json:"name"`
	Kind        string      `yaml:"kind" json:"kind"`
	Description string      `yaml:"description" json:"description"`
	Columns     []ColumnDef `yaml:"columns" json:"columns"`
	Joins       []JoinDef   `yaml:"joins" json:"joins"`
}

// ColumnDef describes one column with its optional business enrichment.
type ColumnDef struct {
	Name               string   `yaml:"name" json:"name"`
	DataType           string   `yaml:"data_type" json:"data_type"`
	SemanticType       string   `yaml:"semantic_type" json:"semantic_type,omitempty"`
	SampleValues       []string `yaml:"sample_values" json:"sample_values,omitempty"`
	BusinessTerm       string   `yaml:"business_term" json:"business_term,omitempty"`
	BusinessDefinition string   `yaml:"business_definition" json:"business_definition,omitempty"`
	UsageNotes         string   `yaml:"usage_notes" json:"usage_notes,omitempty"`
	DataQualityNote    string   `yaml:"data_quality_note" json:"data_quality_note,omitempty"`
	Unit               string   `yaml:"unit" json:"unit,omitempty"`
}

// JoinDef describes a join edge from its owning table.
type JoinDef struct {
	ToTable          string   `yaml:"to_table" json:"to_table"`
	ViaField         []string `yaml:"via_field" json:"via_field"`
	RelationshipType string   `yaml:"relationship_type" json:"relationship_type"`
}

// ConceptDef is one business concept with its table links.
type ConceptDef struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description"`
	Tables      []ConceptLink `yaml:"tables" json:"tables"`
}

// ConceptLink ties a concept to a table with a confidence level.
type ConceptLink struct {
	Table      string `yaml:"table" json:"table"`
	Confidence string `yaml:"confidence" json:"confidence"`
}

// Enrichment is the business-context layer, keyed to schema tables and
// columns by name.
type Enrichment struct {
	Tables []TableEnrichment `yaml:"tables" json:"tables"`
}

// TableEnrichment carries business context for one table.
type TableEnrichment struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description" json:"description"`
	Columns     []ColumnEnrichment `yaml:"columns" json:"columns"`
}

// ColumnEnrichment carries business context for one column.
type ColumnEnrichment struct {
	Name               string   `yaml:"name" json:"name"`
	SemanticType       string   `yaml:"semantic_type" json:"semantic_type"`
	SampleValues       []string `yaml:"sample_values" json:"sample_values"`
	BusinessTerm       string   `yaml:"business_term" json:"business_term"`
	BusinessDefinition string   `yaml:"business_definition" json:"business_definition"`
	UsageNotes         string   `yaml:"usage_notes" json:"usage_notes"`
	DataQualityNote    string   `yaml:"data_quality_note" json:"data_quality_note"`
	Unit               string   `yaml:"unit" json:"unit"`
}

// Ontology is the concept layer.
type Ontology struct {
	Concepts []ConceptDef `yaml:"concepts" json:"concepts"`
}
