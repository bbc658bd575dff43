package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize strips accents (á→a, ñ→n), collapses whitespace and
// lowercases, so names from different sources compare equal.
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(out))
	return strings.Join(strings.Fields(out), " ")
}

// Similarity is a Levenshtein ratio in [0, 1]; 1 means equal strings.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// BestMatch returns the index of the option most similar to target,
// provided its similarity meets the cutoff (inclusive). Expects
// pre-normalized input. Earlier options win ties, keeping lookups
// deterministic.
func BestMatch(target string, options []string, cutoff float64) (int, bool) {
	bestIdx := -1
	bestSim := 0.0
	for i, opt := range options {
		sim := Similarity(target, opt)
		if sim < cutoff {
			continue
		}
		if bestIdx < 0 || sim > bestSim {
			bestSim = sim
			bestIdx = i
		}
	}
	return bestIdx, bestIdx >= 0
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			sub := prev[j-1]
			if ra[i-1] != rb[j-1] {
				sub++
			}
			cur[j] = sub
			if v := prev[j] + 1; v < cur[j] {
				cur[j] = v
			}
			if v := cur[j-1] + 1; v < cur[j] {
				cur[j] = v
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
