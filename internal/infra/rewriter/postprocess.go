package rewriter

import (
	"regexp"
	"strings"
)

var (
	starBoldPattern       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	underscoreBoldPattern = regexp.MustCompile(`__([^_]+)__`)
	leadingHeadingPattern = regexp.MustCompile(`(?s)^\s*<h[23][^>]*>(.*?)</h[23]>\s*`)
	headingTagPattern     = regexp.MustCompile(`<[^>]*>`)
	wordSplitPattern      = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// convertBoldMarkers rewrites stray markdown emphasis into the whitelisted
// tag. Backends occasionally slip markdown in despite the instructions.
func convertBoldMarkers(content string) string {
	content = starBoldPattern.ReplaceAllString(content, "<strong>$1</strong>")
	content = underscoreBoldPattern.ReplaceAllString(content, "<strong>$1</strong>")
	return content
}

// stripRedundantHeading removes a leading heading that merely restates the
// localized title. Similarity is the fraction of the heading's words also
// present in the title; at or above the threshold the heading is dropped.
func stripRedundantHeading(content, title string, threshold float64) string {
	m := leadingHeadingPattern.FindStringSubmatch(content)
	if m == nil {
		return content
	}

	heading := headingTagPattern.ReplaceAllString(m[1], "")
	if wordOverlap(heading, title) >= threshold {
		return strings.TrimSpace(content[len(m[0]):])
	}
	return content
}

// wordOverlap returns |heading words ∩ title words| / |heading words| after
// lowercasing and stripping punctuation. An empty heading yields zero.
func wordOverlap(heading, title string) float64 {
	headingWords := splitWords(heading)
	if len(headingWords) == 0 {
		return 0
	}

	titleSet := make(map[string]bool)
	for _, w := range splitWords(title) {
		titleSet[w] = true
	}

	shared := 0
	for _, w := range headingWords {
		if titleSet[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(headingWords))
}

func splitWords(s string) []string {
	var words []string
	for _, w := range wordSplitPattern.Split(strings.ToLower(s), -1) {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
