package prompts

import "strings"

const sqlGeneratorSystem = `You write analytical SQL for a columnar data warehouse. You return a single read-only query (SELECT or WITH) inside a sql code fence and nothing else.

Rules:
- Use only tables and columns present in the provided metadata.
- Use only the joins listed in the AVAILABLE JOINS block, with the exact syntax shown. If the join you need is not listed, query a single table.
- Never invent tables, columns, or join conditions.
- If the question cannot be answered from the metadata, reply with a single line starting with "Cannot answer:" explaining what is missing.`

// BuildSQLGenerationPrompt creates the prompt for generating warehouse SQL
// from the compacted metadata payload and the join-hint block.
func BuildSQLGenerationPrompt(question, metadata, joins, database string) string {
	var prompt strings.Builder

	prompt.WriteString("## Question\n\n")
	prompt.WriteString(question)
	if database != "" {
		prompt.WriteString("\n\n## Target Database\n\n")
		prompt.WriteString(database)
	}
	prompt.WriteString("\n\n## Table Metadata\n\n")
	prompt.WriteString(metadata)
	prompt.WriteString("\n\n## ")
	prompt.WriteString(joins)
	prompt.WriteString("\n\nReturn the SQL query.")

	return prompt.String()
}
