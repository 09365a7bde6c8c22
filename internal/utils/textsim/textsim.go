package textsim

import (
	"strings"
	"unicode"
)

// Similarity scores how alike two free-text transaction descriptions are,
// in [0, 1]. It combines token-set overlap (Jaccard) with a character bigram
// comparison so that "GROCERY STORE 0042" and "grocery store" still score
// high while unrelated descriptions stay low.
//
// Bank statement descriptions are noisy: uppercase, reference numbers,
// truncation. Tokenization strips digits-only tokens and punctuation before
// comparing.
func Similarity(a, b string) float64 {
	ta := Tokenize(a)
	tb := Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	jaccard := tokenJaccard(ta, tb)
	bigram := bigramDice(strings.Join(ta, " "), strings.Join(tb, " "))

	// Token overlap dominates; bigrams catch partial-word matches such as
	// truncated statement text.
	return 0.7*jaccard + 0.3*bigram
}

// Tokenize lowercases the input, splits on any non-letter/non-digit rune and
// drops tokens that carry no descriptive signal (pure numbers, one-letter
// fragments).
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || isNumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func tokenJaccard(a, b []string) float64 {
	sa := make(map[string]struct{}, len(a))
	for _, t := range a {
		sa[t] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, t := range b {
		sb[t] = struct{}{}
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func bigramDice(a, b string) float64 {
	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}
	inter := 0
	for g, n := range ba {
		if m, ok := bb[g]; ok {
			if m < n {
				inter += m
			} else {
				inter += n
			}
		}
	}
	total := 0
	for _, n := range ba {
		total += n
	}
	for _, n := range bb {
		total += n
	}
	return 2 * float64(inter) / float64(total)
}

func bigrams(s string) map[string]int {
	rs := []rune(s)
	out := make(map[string]int)
	for i := 0; i+1 < len(rs); i++ {
		out[string(rs[i:i+2])]++
	}
	return out
}
