package stitch

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var devanagari = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}},
}

// StripDevanagari removes Devanagari code points that the Urdu model leaks
// into its output. Text is NFC-normalized first so combining sequences are
// removed whole, then whitespace left behind is collapsed.
func StripDevanagari(text string) string {
	normalized := norm.NFC.String(text)
	if !strings.ContainsFunc(normalized, isDevanagari) {
		return normalized
	}
	stripped := strings.Map(func(r rune) rune {
		if isDevanagari(r) {
			return -1
		}
		return r
	}, normalized)
	return strings.Join(strings.Fields(stripped), " ")
}

func isDevanagari(r rune) bool {
	return unicode.Is(devanagari, r)
}
