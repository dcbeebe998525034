package validation

import (
	"regexp"
	"strings"
)

// Characters pasted from rich text that render as nothing but break matching.
var invisibleChars = []string{
	"\u200B", // Zero-width space
	"\u200C", // Zero-width non-joiner
	"\u200D", // Zero-width joiner
	"\uFEFF", // Zero-width no-break space (BOM)
	"\u00AD", // Soft hyphen
	"\u2060", // Word joiner
	"\u180E", // Mongolian vowel separator
}

var whitespaceRun = regexp.MustCompile(`[\s\x{3000}]+`)

// NormalizeQuery strips invisible characters, collapses whitespace runs
// (including the ideographic space) to one space and trims the result.
func NormalizeQuery(q string) string {
	if q == "" {
		return q
	}
	for _, c := range invisibleChars {
		q = strings.ReplaceAll(q, c, "")
	}
	q = whitespaceRun.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}
