package llm

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Provider defines a generic LLM interface
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("empty response from model")

var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

// ExtractJSONArray returns the span from the first '[' to the last ']' in
// text. Models often wrap JSON in prose or markdown fences; this keeps only
// the array. The second result is false when no such span exists.
func ExtractJSONArray(text string) (string, bool) {
	m := jsonArrayPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// FirstLine returns the first non-empty trimmed line of text
func FirstLine(text string) string {
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			return s
		}
	}
	return ""
}
