package util

import (
	"strings"
	"unicode"
)

// SanitizeString trims s and drops control and format characters. Format
// characters include bidi overrides, which can disguise an uploaded file's
// extension in right-to-left text.
func SanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
