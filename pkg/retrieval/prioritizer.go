package retrieval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/metaquery-ai/metaquery-engine/pkg/models"
)

// DimensionCategory maps question keywords to a canonical token expected in
// join field names. Kept as data rather than inline logic so the mapping can
// grow without touching the scoring algorithm.
type DimensionCategory struct {
	// Canonical is the token looked for in the lower-cased join field name.
	Canonical string
	// Keywords trigger the category when any of them appears in the question.
	Keywords []string
}

// DimensionCategories is the fixed keyword-to-dimension table used for join
// scoring. Order matters: only the first category matching a field counts.
var DimensionCategories = []DimensionCategory{
	{Canonical: "agent", Keywords: []string{"agent", "representative", "rep"}},
	{Canonical: "customer", Keywords: []string{"customer", "cust", "subscriber"}},
	{Canonical: "call", Keywords: []string{"call", "interaction", "contact"}},
	{Canonical: "center", Keywords: []string{"center", "location"}},
	{Canonical: "device", Keywords: []string{"device", "phone", "equipment"}},
}

// CommonJoinKeys are field names that join reliably across the warehouse and
// get a small flat bonus.
var CommonJoinKeys = []string{"customer_id", "cust_id", "agent_id", "mtn", "recoverykey", "call_id"}

// Scoring weights for join prioritization.
const (
	dimensionMatchScore = 5
	commonKeyScore      = 2
	multiFieldBonus     = 1
	manyToOneBonus      = 1
)

// PrioritizeJoins scores each edge by relevance to the question and returns
// the edges sorted by score descending, ties broken by the string form of
// their join fields for determinism. The input slice is not modified.
func PrioritizeJoins(joins []models.JoinEdge, question string) []models.JoinEdge {
	if len(joins) == 0 {
		return nil
	}

	questionLower := strings.ToLower(question)

	scored := make([]models.JoinEdge, len(joins))
	copy(scored, joins)
	for i := range scored {
		scored[i].PriorityScore = scoreJoin(scored[i], questionLower)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].PriorityScore != scored[j].PriorityScore {
			return scored[i].PriorityScore > scored[j].PriorityScore
		}
		return fmt.Sprintf("%v", scored[i].OnField) < fmt.Sprintf("%v", scored[j].OnField)
	})

	return scored
}

func scoreJoin(edge models.JoinEdge, questionLower string) int {
	score := 0

	for _, field := range edge.OnField {
		fieldLower := strings.ToLower(field)

		for _, category := range DimensionCategories {
			if !categoryInQuestion(category, questionLower) {
				continue
			}
			if strings.Contains(fieldLower, category.Canonical) {
				score += dimensionMatchScore
				break // first matching category only
			}
		}

		for _, key := range CommonJoinKeys {
			if fieldLower == key {
				score += commonKeyScore
				break
			}
		}
	}

	if len(edge.OnField) > 1 {
		score += multiFieldBonus
	}
	if edge.JoinType == models.JoinTypeManyToOne {
		score += manyToOneBonus
	}

	return score
}

func categoryInQuestion(category DimensionCategory, questionLower string) bool {
	for _, keyword := range category.Keywords {
		if strings.Contains(questionLower, keyword) {
			return true
		}
	}
	return false
}
