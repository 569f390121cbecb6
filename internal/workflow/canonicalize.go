package workflow

import (
	"sort"
	"strings"
	"unicode"
)

// Canonicalize rewrites resolved mentions in the utterance to their canonical
// names. Substitutions run longest mention first so a mention that is a
// substring of another can never clobber it, and only replace whole words,
// case-insensitively.
func Canonicalize(utterance string, resolved map[string]string) string {
	if len(resolved) == 0 {
		return utterance
	}
	mentions := make([]string, 0, len(resolved))
	for m := range resolved {
		mentions = append(mentions, m)
	}
	sort.Slice(mentions, func(i, j int) bool {
		if len(mentions[i]) != len(mentions[j]) {
			return len(mentions[i]) > len(mentions[j])
		}
		return mentions[i] < mentions[j]
	})

	out := utterance
	for _, m := range mentions {
		out = replaceWord(out, m, resolved[m])
	}
	return out
}

// replaceWord substitutes every whole-word, case-insensitive occurrence of
// mention with canonical. Comparison is per rune so multi-byte names keep
// their alignment.
func replaceWord(text, mention, canonical string) string {
	if mention == "" || text == "" {
		return text
	}
	runes := []rune(text)
	target := []rune(strings.ToLower(mention))

	var b strings.Builder
	i := 0
	for i < len(runes) {
		if !matchesAt(runes, target, i) || !wordBounded(runes, i, i+len(target)) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		b.WriteString(canonical)
		i += len(target)
	}
	return b.String()
}

func matchesAt(runes, target []rune, at int) bool {
	if at+len(target) > len(runes) {
		return false
	}
	for k, t := range target {
		if unicode.ToLower(runes[at+k]) != t {
			return false
		}
	}
	return true
}

func wordBounded(runes []rune, start, end int) bool {
	startOK := start == 0 || !isWordRune(runes[start-1])
	endOK := end == len(runes) || !isWordRune(runes[end])
	return startOK && endOK
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
