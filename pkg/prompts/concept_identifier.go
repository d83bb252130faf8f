package prompts

import (
	"fmt"
	"strings"

	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

const conceptIdentifierSystem = `You classify business questions against a catalog of business concepts.
You respond with a JSON array of concept names and nothing else. No prose, no markdown fences, no explanations.`

// BuildConceptIdentifierPrompt creates the prompt asking the model which
// catalog concepts are relevant to the question. The expected response is a
// JSON array of concept names, only names, nothing else.
func BuildConceptIdentifierPrompt(question, conceptsList string) string {
	var prompt strings.Builder

	prompt.WriteString("Given the question below, select the business concepts from the catalog that are relevant to answering it.\n\n")
	prompt.WriteString("## Question\n\n")
	prompt.WriteString(question)
	prompt.WriteString("\n\n## Concept Catalog\n\n")
	prompt.WriteString(conceptsList)
	prompt.WriteString("\n\n## Response Format\n\n")
	prompt.WriteString("Return a JSON array of the relevant concept names, exactly as they appear in the catalog.\n")
	prompt.WriteString(`Example: ["Agent Performance", "Call Volume"]` + "\n")
	prompt.WriteString("Return an empty array [] if no concept applies. Return ONLY the JSON array.")

	return prompt.String()
}

// FormatConceptListing renders the compact "name: description" listing of the
// concept catalog injected into the concept identification prompt.
func FormatConceptListing(concepts []models.Concept) string {
	lines := make([]string, 0, len(concepts))
	for _, c := range concepts {
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Name, c.Description))
	}
	return strings.Join(lines, "\n")
}
