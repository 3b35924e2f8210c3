// Package text provides utilities for text processing and derivation.
// It includes reusable functions for character counting, HTML stripping,
// summary truncation, slug generation and tag extraction used by the
// generation pipeline.
package text

// CountRunes counts the number of Unicode characters (runes) in the given
// text. It correctly handles multi-byte characters, which matters for
// Vietnamese output where byte length and character length diverge.
func CountRunes(text string) int {
	return len([]rune(text))
}
