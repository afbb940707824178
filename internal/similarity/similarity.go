// Package similarity implements the string matching used by the dedup
// engine. Jaro-Winkler is preferred over plain edit distance because it
// rewards shared prefixes, the common failure mode of romanized titles
// across providers.
package similarity

import (
	"strings"
	"unicode"
)

const (
	winklerPrefixWeight = 0.1
	winklerMaxPrefix    = 4
)

// Normalize lowercases s, strips punctuation and collapses whitespace,
// preparing a title for comparison.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Jaro computes the Jaro similarity of a and b in [0,1].
func Jaro(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	s1 := []rune(a)
	s2 := []rune(b)
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}

	window := max(len(s1), len(s2))/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len(s1))
	matched2 := make([]bool, len(s2))

	matches := 0
	for i := range s1 {
		lo := max(0, i-window)
		hi := min(len(s2)-1, i+window)
		for j := lo; j <= hi; j++ {
			if matched2[j] || s1[i] != s2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Count transpositions between the matched sequences.
	transpositions := 0
	k := 0
	for i := range s1 {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len(s1)) + m/float64(len(s2)) + (m-t)/m) / 3
}

// JaroWinkler boosts the Jaro score by a prefix bonus of up to four
// leading matching characters weighted by 0.1.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)

	prefix := 0
	s1 := []rune(a)
	s2 := []rune(b)
	for prefix < len(s1) && prefix < len(s2) && prefix < winklerMaxPrefix && s1[prefix] == s2[prefix] {
		prefix++
	}

	score := j + float64(prefix)*winklerPrefixWeight*(1-j)
	if score > 1 {
		score = 1
	}
	return score
}
