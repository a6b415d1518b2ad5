// Package slug turns display names into file-name safe tokens.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxLen   = 48
	fallback = "untitled"
)

// stripMarks decomposes accented letters and drops the combining marks, so
// "Café" folds to "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases input, folds accents and joins alphanumeric runs with a
// single dash. The result is ASCII, at most 48 bytes and never empty.
func Make(input string) string {
	folded, _, err := transform.String(stripMarks, input)
	if err != nil {
		folded = input
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
		if b.Len() >= maxLen {
			break
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return fallback
	}
	return s
}
