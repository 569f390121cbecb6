// Package resolve matches player and club mentions in user questions against
// the authoritative name lists from the match database. All functions are
// pure: they operate only on the inputs they are given and never call out.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a name and strips diacritics so that "Kökçü" and
// "kokcu" compare equal. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	out, _, err := transform.String(stripMarks, name)
	if err != nil {
		out = name
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// normalizeIndexed normalizes s rune by rune and returns the normalized runes
// together with, for each normalized rune, the index of the original rune it
// came from. The mapping lets candidate extraction translate a match span in
// normalized space back into the original text.
func normalizeIndexed(s string) (normed []rune, origIdx []int) {
	orig := []rune(s)
	for i, r := range orig {
		n := Normalize(string(r))
		for _, nr := range n {
			normed = append(normed, nr)
			origIdx = append(origIdx, i)
		}
	}
	return normed, origIdx
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
