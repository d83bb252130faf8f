// Package retrieval implements the concept-first metadata retrieval pipeline:
// concept selection, schema narrowing, graph query synthesis, execution and
// merging, join prioritization, and compaction for SQL generation.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/metaquery-ai/metaquery-engine/pkg/llm"
	"github.com/metaquery-ai/metaquery-engine/pkg/models"
	"github.com/metaquery-ai/metaquery-engine/pkg/prompts"
)

// Fallback scoring weights. The fallback activates whenever the model path
// fails; its output must stay deterministic for a fixed question and catalog.
const (
	nameWordScore      = 10
	namePhraseScore    = 15
	descWordScore      = 2
	fallbackThreshold  = 5
	maxFallbackResults = 5
)

const (
	conceptSelectTemperature = 0
	conceptSelectMaxTokens   = 500
)

// ConceptSelector maps a free-text question to the subset of catalog concepts
// relevant to it. The primary path asks the model; any failure there degrades
// to deterministic keyword scoring. Selection never fails outward.
type ConceptSelector struct {
	client llm.Client
	logger *zap.Logger
}

// NewConceptSelector creates a ConceptSelector.
func NewConceptSelector(client llm.Client, logger *zap.Logger) *ConceptSelector {
	return &ConceptSelector{
		client: client,
		logger: logger.Named("concept-selector"),
	}
}

// Select returns the concepts relevant to the question. An empty catalog
// returns an empty selection without a model call.
func (s *ConceptSelector) Select(ctx context.Context, question string, concepts []models.Concept) []models.Concept {
	if len(concepts) == 0 {
		return nil
	}

	selected, err := s.selectWithModel(ctx, question, concepts)
	if err != nil {
		s.logger.Warn("model concept selection failed, falling back to keyword matching",
			zap.Error(err))
		return keywordFallback(question, concepts)
	}

	s.logger.Debug("model identified concepts", zap.Int("count", len(selected)))
	return selected
}

// selectWithModel asks the model for a JSON array of concept names and
// intersects the answer with the catalog. Names the catalog does not know are
// silently dropped; survivors keep catalog order.
func (s *ConceptSelector) selectWithModel(ctx context.Context, question string, concepts []models.Concept) ([]models.Concept, error) {
	response, err := s.client.Generate(ctx, prompts.ContextConceptIdentifier, map[string]string{
		"prompt":        question,
		"concepts_list": prompts.FormatConceptListing(concepts),
	}, conceptSelectTemperature, conceptSelectMaxTokens)
	if err != nil {
		return nil, err
	}

	names, err := llm.ExtractStringArray(response)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []models.Concept
	for _, c := range concepts {
		if wanted[c.Name] {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// keywordFallback scores each concept against the question:
// +10 per word shared with the concept name, +15 if the full name appears in
// the question, +2 per word shared with the description. Concepts scoring
// above 5 are kept, sorted by score descending (ties stable in catalog
// order), truncated to 5.
func keywordFallback(question string, concepts []models.Concept) []models.Concept {
	questionLower := strings.ToLower(question)
	questionWords := wordSet(questionLower)

	var relevant []models.Concept
	for _, concept := range concepts {
		score := 0

		nameLower := strings.ToLower(concept.Name)
		score += nameWordScore * overlap(questionWords, wordSet(nameLower))

		if strings.Contains(questionLower, nameLower) {
			score += namePhraseScore
		}

		if concept.Description != "" {
			score += descWordScore * overlap(questionWords, wordSet(strings.ToLower(concept.Description)))
		}

		if score > fallbackThreshold {
			concept.RelevanceScore = score
			relevant = append(relevant, concept)
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].RelevanceScore > relevant[j].RelevanceScore
	})

	if len(relevant) > maxFallbackResults {
		relevant = relevant[:maxFallbackResults]
	}
	return relevant
}

func wordSet(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		words[w] = true
	}
	return words
}

func overlap(a, b map[string]bool) int {
	count := 0
	for w := range b {
		if a[w] {
			count++
		}
	}
	return count
}
