package text

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML removes markup from an HTML fragment and collapses runs of
// whitespace into single spaces.
func StripHTML(html string) string {
	plain := tagPattern.ReplaceAllString(html, " ")
	plain = whitespacePattern.ReplaceAllString(plain, " ")
	return strings.TrimSpace(plain)
}

// Summarize derives a plain-text summary from HTML content, truncated to at
// most maxRunes characters with a trailing ellipsis when truncation occurs.
func Summarize(html string, maxRunes int) string {
	plain := StripHTML(html)
	if CountRunes(plain) <= maxRunes {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}
