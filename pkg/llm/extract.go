package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Model responses rarely honor a "return only X" instruction perfectly: they
// wrap payloads in code fences, prepend commentary, or append prose. Every
// call site that expects a structured payload parses it through the helpers
// here, so the failure modes stay enumerable.
var (
	// ErrNoPayload indicates the response contains no candidate payload at all.
	ErrNoPayload = errors.New("no structured payload found in response")

	// ErrMalformedJSON indicates a payload was located but does not parse.
	ErrMalformedJSON = errors.New("malformed JSON payload")

	// ErrWrongType indicates valid JSON of the wrong top-level type
	// (e.g. an object where an array of strings was required).
	ErrWrongType = errors.New("JSON payload has wrong top-level type")
)

// StripCodeFence removes a single fenced-code wrapper from a response,
// handling both language-tagged fences and bare fences. When the
// first line opens a fence, the first and last lines are dropped; anything
// else is returned trimmed but otherwise untouched.
func StripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	body := lines[1:]
	if strings.HasPrefix(strings.TrimSpace(body[len(body)-1]), "```") {
		body = body[:len(body)-1]
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// ExtractStringArray parses a response that must contain a JSON array of
// strings. The response is sanitized first: surrounding code fences are
// stripped and any trailing prose after the final ']' is truncated. Valid JSON
// of any other shape (object, scalar, mixed array) returns ErrWrongType.
func ExtractStringArray(response string) ([]string, error) {
	cleaned := StripCodeFence(response)

	end := strings.LastIndex(cleaned, "]")
	if end < 0 {
		return nil, ErrNoPayload
	}
	cleaned = strings.TrimSpace(cleaned[:end+1])

	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, ErrWrongType
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: array element %T", ErrWrongType, item)
		}
		result = append(result, s)
	}
	return result, nil
}
