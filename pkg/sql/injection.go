package sql

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionFinding describes a string literal that tripped the injection
// detector.
type InjectionFinding struct {
	Literal     string // The literal content that was flagged
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckLiterals scans every single-quoted string literal in a statement for
// SQL injection patterns. The statement structure itself is the model's
// output and is validated separately; the literals are where question text
// can smuggle a payload into the generated SQL.
//
// Returns one finding per flagged literal, or nil when all literals are clean.
func CheckLiterals(sqlQuery string) []*InjectionFinding {
	var findings []*InjectionFinding
	for _, literal := range extractStringLiterals(sqlQuery) {
		if literal == "" {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(literal); isSQLi {
			findings = append(findings, &InjectionFinding{
				Literal:     literal,
				Fingerprint: string(fingerprint),
			})
		}
	}
	return findings
}

// extractStringLiterals returns the contents of single-quoted literals,
// honoring both backslash and doubled-quote escapes.
func extractStringLiterals(sqlQuery string) []string {
	var literals []string
	var current strings.Builder

	inString := false
	runes := []rune(sqlQuery)
	for i := 0; i < len(runes); i++ {
		char := runes[i]
		if !inString {
			if char == '\'' {
				inString = true
				current.Reset()
			}
			continue
		}

		switch {
		case char == '\\' && i+1 < len(runes):
			current.WriteRune(char)
			i++
			current.WriteRune(runes[i])
		case char == '\'' && i+1 < len(runes) && runes[i+1] == '\'':
			current.WriteRune('\'')
			i++
		case char == '\'':
			inString = false
			literals = append(literals, current.String())
		default:
			current.WriteRune(char)
		}
	}

	return literals
}
