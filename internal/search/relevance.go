package search

import (
	"strings"
	"unicode/utf8"

	"github.com/vokin23/channelsearch/core/telegram/format"
	"github.com/vokin23/channelsearch/internal/directory"
)

// minTokenRunes is the shortest token considered for fuzzy containment;
// shorter tokens produce too many accidental matches.
const minTokenRunes = 4

// Relevant reports whether a dialog-scan candidate matches any of the terms.
// A term matches when it appears as a case-insensitive substring of the title
// or description, or when a sufficiently long token of either side is
// contained in the other.
func Relevant(c directory.Candidate, terms []string) bool {
	hay := strings.ToLower(c.Title)
	if about := format.DerefString(c.About, ""); about != "" {
		hay += " " + strings.ToLower(about)
	}
	for _, term := range terms {
		if termMatches(strings.ToLower(term), hay) {
			return true
		}
	}
	return false
}

func termMatches(term, hay string) bool {
	if term == "" {
		return false
	}
	if strings.Contains(hay, term) {
		return true
	}
	for _, tok := range strings.Fields(term) {
		if utf8.RuneCountInString(tok) >= minTokenRunes && strings.Contains(hay, tok) {
			return true
		}
	}
	for _, tok := range strings.Fields(hay) {
		if utf8.RuneCountInString(tok) >= minTokenRunes && strings.Contains(term, tok) {
			return true
		}
	}
	return false
}
