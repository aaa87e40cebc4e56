package moderation

import (
	"strings"
	"unicode"
)

// Normalize strips all whitespace and lowercases, so blocked terms
// cannot be dodged with spacing or casing tricks. Idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ViolatesPolicy reports whether the normalized text contains any of
// the given terms, which must already be normalized. Applied to both
// message content and room titles.
func ViolatesPolicy(text string, terms []string) bool {
	normalized := Normalize(text)
	for _, term := range terms {
		if term != "" && strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}
