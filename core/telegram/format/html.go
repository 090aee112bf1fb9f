package format

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats specially.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

var htmlTagRe = regexp.MustCompile(`<[^<>]*>`)

// StripTags removes HTML tags and unescapes entities, producing the plain-text
// form of a message for degraded delivery.
func StripTags(text string) string {
	return html.UnescapeString(htmlTagRe.ReplaceAllString(text, ""))
}

// TruncateRunes shortens s to at most max runes, appending an ellipsis when cut.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// CountSuffix renders a subscriber count with K/M suffixes: 1500 -> "1K", 2_300_000 -> "2M".
func CountSuffix(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%dK", n/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
