package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaYAML = `
tables:
  - name: calls
    kind: fact
    columns:
      - name: call_id
        data_type: STRING
      - name: duration_sec
        data_type: INT64
    joins:
      - to_table: agents
        via_field: [agent_id]
        relationship_type: many_to_one
  - name: agents
    columns:
      - name: agent_id
        data_type: STRING
`

const enrichmentYAML = `
tables:
  - name: calls
    description: One row per completed call
    columns:
      - name: duration_sec
        business_term: Call Duration
        business_definition: Talk time excluding hold
        unit: seconds
        sample_values: ["120", "45"]
      - name: no_such_column
        business_term: Ghost
  - name: no_such_table
    description: ignored
`

const ontologyYAML = `
concepts:
  - name: Agent Performance
    description: KPIs for call center agents
    tables:
      - table: agents
        confidence: high
      - table: calls
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadMergesAllLayers(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaYAML)
	enrichment := writeFile(t, dir, "enrichment.yaml", enrichmentYAML)
	ontology := writeFile(t, dir, "ontology.yaml", ontologyYAML)

	catalog, err := Read(schema, enrichment, ontology)
	require.NoError(t, err)

	require.Len(t, catalog.Tables, 2)
	calls := catalog.Tables[0]
	assert.Equal(t, "fact", calls.Kind)
	assert.Equal(t, "One row per completed call", calls.Description)

	duration := calls.Columns[1]
	assert.Equal(t, "Call Duration", duration.BusinessTerm)
	assert.Equal(t, "Talk time excluding hold", duration.BusinessDefinition)
	assert.Equal(t, "seconds", duration.Unit)
	assert.Equal(t, []string{"120", "45"}, duration.SampleValues)

	// Unenriched column untouched.
	assert.Empty(t, calls.Columns[0].BusinessTerm)

	// Kind defaults when the schema omits it.
	assert.Equal(t, "table", catalog.Tables[1].Kind)

	require.Len(t, catalog.Concepts, 1)
	assert.Equal(t, "Agent Performance", catalog.Concepts[0].Name)
	require.Len(t, catalog.Concepts[0].Tables, 2)
}

func TestReadSchemaOnly(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaYAML)

	catalog, err := Read(schema, "", "")
	require.NoError(t, err)

	assert.Len(t, catalog.Tables, 2)
	assert.Empty(t, catalog.Concepts)
}

func TestReadMissingSchema(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.yaml"), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema file")
}

func TestReadJSONSchema(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.json",
		`{"tables": [{"name": "calls", "kind": "fact", "columns": [{"name": "call_id", "data_type": "STRING"}]}]}`)

	catalog, err := Read(schema, "", "")
	require.NoError(t, err)

	require.Len(t, catalog.Tables, 1)
	assert.Equal(t, "calls", catalog.Tables[0].Name)
}

func TestFlattenTables(t *testing.T) {
	tables, columns, joins := flattenTables([]TableDef{
		{
			Name: "calls",
			Kind: "fact",
			Columns: []ColumnDef{
				{Name: "call_id", DataType: "STRING"},
				{Name: "duration_sec", DataType: "INT64", Unit: "seconds"},
			},
			Joins: []JoinDef{{ToTable: "agents", ViaField: []string{"agent_id"}}},
		},
	})

	require.Len(t, tables, 1)
	require.Len(t, columns, 2)
	require.Len(t, joins, 1)

	// Sparse columns get sparse property maps.
	assert.Equal(t, map[string]any{"data_type": "STRING"}, columns[0]["props"])
	assert.Equal(t, map[string]any{"data_type": "INT64", "unit": "seconds"}, columns[1]["props"])

	// Relationship type defaults to many_to_one.
	assert.Equal(t, "many_to_one", joins[0]["relationship_type"])
}

// The loader must write the property names the retrieval side reads and the
// synthesis prompt advertises. A graph built by this loader is the only
// catalog the engine ever queries, so a drift here loses descriptions
// silently.
func TestLoadQueriesWritePropertiesTheStoreReads(t *testing.T) {
	assert.Contains(t, loadTablesQuery, "t.type = table.kind")
	assert.Contains(t, loadTablesQuery, "t.business_description = table.description")
	assert.Contains(t, loadConceptsQuery, "k.definition = concept.description")
	assert.NotContains(t, loadTablesQuery, "t.table_type")
	assert.NotContains(t, loadConceptsQuery, "k.description")
}

// Joins merge on endpoints plus via_field so two edges between the same
// table pair on different fields coexist instead of overwriting each other.
func TestLoadJoinsQueryMergesOnViaField(t *testing.T) {
	assert.Contains(t, loadJoinsQuery, "MERGE (from)-[j:JOINS_WITH {via_field: join.via_field}]->(to)")
}

func TestFlattenTablesKeepsParallelJoins(t *testing.T) {
	_, _, joins := flattenTables([]TableDef{
		{
			Name: "calls",
			Joins: []JoinDef{
				{ToTable: "agents", ViaField: []string{"agent_id"}},
				{ToTable: "agents", ViaField: []string{"supervisor_id"}, RelationshipType: "one_to_many"},
			},
		},
	})

	require.Len(t, joins, 2)
	assert.Equal(t, []string{"agent_id"}, joins[0]["via_field"])
	assert.Equal(t, "many_to_one", joins[0]["relationship_type"])
	assert.Equal(t, []string{"supervisor_id"}, joins[1]["via_field"])
	assert.Equal(t, "one_to_many", joins[1]["relationship_type"])
}

func TestFlattenConceptsDefaultsConfidence(t *testing.T) {
	_, links := flattenConcepts([]ConceptDef{
		{Name: "Churn", Tables: []ConceptLink{{Table: "customers"}}},
	})

	require.Len(t, links, 1)
	assert.Equal(t, "medium", links[0]["confidence"])
}
