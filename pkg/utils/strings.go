package utils

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeText strips markup, collapses whitespace (line breaks and tabs
// included) and trims the result. Used for admin-entered labels.
// e.g. "  <b>Hazmat</b>\n Fee " -> "Hazmat Fee"
func SanitizeText(input string) string {
	s := tagPattern.ReplaceAllString(input, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
