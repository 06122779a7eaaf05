package faq

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Scorer rates how close an utterance is to a stored question, 0 (unrelated) to 100
// (identical after normalization). Implementations must be deterministic.
type Scorer interface {
	Score(query, candidate string) int
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(query, candidate string) int

// Score implements Scorer.
func (f ScorerFunc) Score(query, candidate string) int {
	return f(query, candidate)
}

const (
	tokenScale         = 0.95
	partialScale       = 0.9
	farPartialScale    = 0.6
	partialLengthRatio = 1.5
	farLengthRatio     = 8.0
)

// WeightedRatio combines several Levenshtein based ratios and keeps the best one.
// Token sort covers reordered words, token set covers extra or missing words and the
// partial ratios cover a short utterance contained in a longer question.
type WeightedRatio struct{}

// Score implements Scorer.
func (WeightedRatio) Score(query, candidate string) int {
	a := normalizeQuestion(query)
	b := normalizeQuestion(candidate)
	if a == "" || b == "" {
		return 0
	}

	best := ratio(a, b)

	shorter, longer := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	lengthRatio := float64(longer) / float64(shorter)

	if lengthRatio < partialLengthRatio {
		best = max(best, ratio(sortTokens(a), sortTokens(b))*tokenScale)
		best = max(best, tokenSetRatio(a, b, ratio)*tokenScale)
	} else {
		scale := partialScale
		if lengthRatio >= farLengthRatio {
			scale = farPartialScale
		}
		best = max(best, partialRatio(a, b)*scale)
		best = max(best, partialRatio(sortTokens(a), sortTokens(b))*tokenScale*scale)
		best = max(best, tokenSetRatio(a, b, partialRatio)*tokenScale*scale)
	}
	return clampScore(int(math.Round(best)))
}

// ratio is the normalized Levenshtein similarity of two strings, in percent.
func ratio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * float64(longest-dist) / float64(longest)
}

// partialRatio slides the shorter string over the longer one and keeps the best window.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	if len(short) == len(long) {
		return ratio(a, b)
	}
	needle := string(short)
	var best float64
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(needle, string(long[i:i+len(short)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// tokenSetRatio compares the shared tokens against each side's full token set.
func tokenSetRatio(a, b string, fn func(x, y string) float64) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	var common, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	return max(fn(base, withA), fn(base, withB), fn(withA, withB))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func sortTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
