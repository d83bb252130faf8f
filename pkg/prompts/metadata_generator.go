package prompts

import (
	"fmt"
	"strings"

	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

const metadataGeneratorSystem = `You write Cypher queries against a metadata knowledge graph. You return a single Cypher query and nothing else.

The graph schema:
- (:Table {name, type, business_description}) physical warehouse tables
- (:Column {name, data_type, semantic_type, sample_values, business_term, business_definition, usage_notes, data_quality_note, unit}) columns
- (:Concept {name, definition}) business concepts
- (t:Table)-[:HAS_COLUMN]->(c:Column)
- (a:Table)-[j:JOINS_WITH {via_field, relationship_type}]->(b:Table)
- (c:Concept)-[r:RELATES_TO {confidence}]->(t:Table)

The query MUST return one row per table with exactly these aliases:
  table_name, table_type, table_description,
  columns_list (collected column property maps),
  joins_list (collected maps with keys to_table, via_field, relationship_type)`

// BuildMetadataQueryPrompt creates the prompt for synthesizing the metadata
// retrieval query from the question, the narrowed schema listing, and an
// optional concept instruction block.
func BuildMetadataQueryPrompt(question, schemaContext, conceptHint string) string {
	var prompt strings.Builder

	prompt.WriteString("Write one Cypher query that retrieves the tables, columns, and join relationships needed to answer this question.\n\n")
	prompt.WriteString("## Question\n\n")
	prompt.WriteString(question)
	prompt.WriteString("\n\n## Available Tables\n\n")
	prompt.WriteString(schemaContext)
	if conceptHint != "" {
		prompt.WriteString("\n")
		prompt.WriteString(conceptHint)
	}
	prompt.WriteString("\n\nReturn ONLY the Cypher query.")

	return prompt.String()
}

// BuildConceptHint renders the instruction block naming the identified
// concepts, directing prioritization toward their tables and columns. Returns
// empty when no concepts were identified.
func BuildConceptHint(concepts []models.Concept) string {
	if len(concepts) == 0 {
		return ""
	}

	names := make([]string, 0, len(concepts))
	for _, c := range concepts {
		names = append(names, c.Name)
	}

	var hint strings.Builder
	hint.WriteString(fmt.Sprintf("\n**RELEVANT CONCEPTS:** %s\n", strings.Join(names, ", ")))
	hint.WriteString("Prioritize tables and columns related to these concepts.\n")
	return hint.String()
}
