package search

import "strings"

// ParseQuery splits a raw user query into search terms.
// Terms are comma-separated; surrounding whitespace is trimmed and empty
// segments are dropped. An all-separator input yields no terms.
func ParseQuery(text string) []string {
	parts := strings.Split(text, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		term := strings.TrimSpace(p)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
