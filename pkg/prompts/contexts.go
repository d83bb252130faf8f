// Package prompts holds the prompt templates for every model call the engine
// makes. Each call site is identified by a context ID; the model transport
// never inspects context IDs beyond string equality.
package prompts

import "fmt"

// Context IDs for the engine's model calls.
const (
	ContextConceptIdentifier = "concept_identifier"
	ContextMetadataGenerator = "metadata_generator"
	ContextSQLGenerator      = "sql_generator"
	ContextSummary           = "summary"
)

// Render produces the system and user messages for a context ID from the
// variables supplied by the call site. Unknown context IDs are an error;
// missing variables render as empty strings, matching the call sites that
// legitimately omit optional blocks (e.g. concept hints).
func Render(contextID string, vars map[string]string) (system, user string, err error) {
	v := func(key string) string { return vars[key] }

	switch contextID {
	case ContextConceptIdentifier:
		return conceptIdentifierSystem,
			BuildConceptIdentifierPrompt(v("prompt"), v("concepts_list")),
			nil
	case ContextMetadataGenerator:
		return metadataGeneratorSystem,
			BuildMetadataQueryPrompt(v("user_question"), v("schema_context"), v("concept_hint")),
			nil
	case ContextSQLGenerator:
		return sqlGeneratorSystem,
			BuildSQLGenerationPrompt(v("user_question"), v("metadata"), v("joins"), v("database")),
			nil
	case ContextSummary:
		return summarySystem,
			BuildSummaryPrompt(v("user_question"), v("query_results"), v("metadata_context"), v("sql_query"), v("row_count")),
			nil
	default:
		return "", "", fmt.Errorf("unknown prompt context %q", contextID)
	}
}
