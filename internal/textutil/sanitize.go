package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultTitle is used when a title sanitizes down to nothing.
const DefaultTitle = "noname"

// SanitizeTitle reduces a user supplied title to a base file name made of
// word characters only. Input is NFC-normalized first so composed and
// decomposed accents produce the same name; letters, digits and underscores
// are kept, everything else (punctuation, "@", whitespace) is dropped.
func SanitizeTitle(title string) string {
	title = norm.NFC.String(title)
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return DefaultTitle
	}
	return out
}
