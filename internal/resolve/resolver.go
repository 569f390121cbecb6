package resolve

import "strings"

// FuzzyThreshold is the minimum 0-100 similarity score required to accept a
// non-exact name match.
const FuzzyThreshold = 85

// ExtractCandidates returns every substring of query whose normalized form
// matches the normalized form of some known name on word boundaries. Each
// match is expanded outward to the nearest non-alphanumeric boundary in the
// original text, so a typo'd suffix ("Ajaxx") still yields one candidate.
// The result is deduplicated; order is unspecified.
func ExtractCandidates(query string, known []string) []string {
	cleaned := strings.Join(strings.Fields(query), " ")
	normQuery, origIdx := normalizeIndexed(cleaned)
	origRunes := []rune(cleaned)

	seen := make(map[string]struct{})
	var out []string
	for _, name := range known {
		target := []rune(Normalize(name))
		if len(target) == 0 {
			continue
		}
		for _, span := range findWordMatches(normQuery, target) {
			start := origIdx[span[0]]
			end := origIdx[span[1]-1] + 1
			for start > 0 && isAlnum(origRunes[start-1]) {
				start--
			}
			for end < len(origRunes) && isAlnum(origRunes[end]) {
				end++
			}
			cand := strings.TrimSpace(string(origRunes[start:end]))
			if cand == "" {
				continue
			}
			if _, dup := seen[cand]; !dup {
				seen[cand] = struct{}{}
				out = append(out, cand)
			}
		}
	}
	return out
}

// findWordMatches returns the [start, end) rune spans where target occurs in
// text anchored to a word boundary on at least one side. A match may spill
// into a longer word on the other side; the caller's boundary expansion turns
// such spans into full candidates (typo suffixes like "Ajaxx" for "Ajax").
func findWordMatches(text, target []rune) [][2]int {
	var spans [][2]int
	for i := 0; i+len(target) <= len(text); i++ {
		end := i + len(target)
		startBound := i == 0 || !isAlnum(text[i-1])
		endBound := end == len(text) || !isAlnum(text[end])
		if !startBound && !endBound {
			continue
		}
		match := true
		for j, r := range target {
			if text[i+j] != r {
				match = false
				break
			}
		}
		if match {
			spans = append(spans, [2]int{i, end})
		}
	}
	return spans
}

// match classifies a single candidate against the player and club lists.
// Exact normalized matches win outright. Otherwise both lists are scored
// independently and the best match is accepted at FuzzyThreshold or above.
// When both lists clear the threshold the player match is preferred; this is
// deliberate policy, not an accident of ordering.
func match(candidate string, players, clubs []string) (canonical string, ok bool) {
	norm := Normalize(candidate)

	for _, name := range players {
		if Normalize(name) == norm {
			return name, true
		}
	}
	for _, name := range clubs {
		if Normalize(name) == norm {
			return name, true
		}
	}

	if best, score := bestMatch(norm, players); score >= FuzzyThreshold {
		return best, true
	}
	if best, score := bestMatch(norm, clubs); score >= FuzzyThreshold {
		return best, true
	}
	return "", false
}

// bestMatch returns the list entry whose normalized form scores highest
// against normCandidate, with its score.
func bestMatch(normCandidate string, list []string) (string, int) {
	best, bestScore := "", -1
	for _, name := range list {
		if s := ratio(normCandidate, Normalize(name)); s > bestScore {
			best, bestScore = name, s
		}
	}
	return best, bestScore
}

// FindAmbiguous returns the candidates in query that could not be confidently
// matched against either name list. With empty lists every candidate is
// ambiguous.
func FindAmbiguous(query string, players, clubs []string) []string {
	union := append(append([]string{}, players...), clubs...)
	var ambiguous []string
	for _, cand := range ExtractCandidates(query, union) {
		if _, ok := match(cand, players, clubs); !ok {
			ambiguous = append(ambiguous, cand)
		}
	}
	return ambiguous
}

// ResolveEntities maps every confidently matched mention in query to its
// canonical name. Ambiguous candidates are dropped silently; canonical values
// always come from the supplied lists.
func ResolveEntities(query string, players, clubs []string) map[string]string {
	union := append(append([]string{}, players...), clubs...)
	resolved := make(map[string]string)
	for _, cand := range ExtractCandidates(query, union) {
		if canonical, ok := match(cand, players, clubs); ok {
			resolved[cand] = canonical
		}
	}
	return resolved
}

// ratio is a 0-100 similarity score between two strings: the classic
// SequenceMatcher/indel ratio, 100 * 2*LCS / (len(a)+len(b)), rounded.
// "ajaxx" vs "ajax" scores 89.
func ratio(a, b string) int {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 100
	}
	m := lcsLength(ar, br)
	return (2*m*100 + total/2) / total
}

// lcsLength computes the longest-common-subsequence length with a rolling
// single-row table.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			tmp := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prevDiag + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			prevDiag = tmp
		}
	}
	return row[len(b)]
}
