package prompts

import "strings"

const summarySystem = `You summarize analytical query results for business users.
Write 3-5 sentences: answer the question directly, then name the most notable values or trends in the data. No markdown headers, no bullet lists, no SQL.`

// BuildSummaryPrompt creates the prompt for summarizing query results.
func BuildSummaryPrompt(question, results, metadataContext, sqlQuery, rowCount string) string {
	var prompt strings.Builder

	prompt.WriteString("## Question\n\n")
	prompt.WriteString(question)
	prompt.WriteString("\n\n## Row Count\n\n")
	prompt.WriteString(rowCount)
	prompt.WriteString("\n\n## Query Results\n\n")
	prompt.WriteString(results)
	prompt.WriteString("\n\n## Metadata Context\n\n")
	prompt.WriteString(metadataContext)
	prompt.WriteString("\n\n## SQL\n\n")
	prompt.WriteString(sqlQuery)
	prompt.WriteString("\n\nSummarize these results for the user.")

	return prompt.String()
}
