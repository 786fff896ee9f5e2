// Package fuzzy scores approximate string similarity on a 0-100 scale.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Match is the best candidate found by ExtractOne.
type Match struct {
	Choice string `json:"choice"`
	Score  int    `json:"score"`
	Index  int    `json:"index"`
}

// Scorer compares two strings and returns a similarity in [0,100].
type Scorer func(a, b string) int

const (
	partialLengthRatio = 1.5
	longLengthRatio    = 8.0
	partialScale       = 0.9
	longPartialScale   = 0.6
	unbaseScale        = 0.95
)

// Process lowercases s, replaces every rune that is neither a letter nor a
// digit with a space and collapses whitespace.
func Process(s string) string {
	s = cases.Lower(language.Und).String(norm.NFC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Ratio is the indel similarity of a and b: 2*M / (len(a)+len(b)), where M
// is the length of their longest common subsequence, counted in runes.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 || len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return round(100 * float64(2*lcsLength(ra, rb)) / float64(total))
}

func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// PartialRatio is the best Ratio of the shorter string against every
// equally long window of the longer one.
func PartialRatio(a, b string) int {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}
	s := string(shorter)
	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := Ratio(s, string(longer[i:i+len(shorter)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// TokenSortRatio compares a and b after sorting their tokens.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func partialTokenSortRatio(a, b string) int {
	return PartialRatio(sortedTokens(a), sortedTokens(b))
}

func tokenSet(a, b string, score Scorer) int {
	setA := tokenSetOf(a)
	setB := tokenSetOf(b)

	var common, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			common = append(common, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	// Identical token sets, or one set contained in the other.
	if base != "" && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}
	return max(score(base, combinedA), score(base, combinedB), score(combinedA, combinedB))
}

func tokenSetOf(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

// TokenSetRatio compares the intersection and differences of the token sets.
func TokenSetRatio(a, b string) int {
	return tokenSet(a, b, Ratio)
}

func partialTokenSetRatio(a, b string) int {
	return tokenSet(a, b, PartialRatio)
}

// WRatio is a weighted combination of the ratio family. Inputs are processed
// with Process first. Partial ratios are only considered when one string is
// at least half again as long as the other.
func WRatio(a, b string) int {
	p1, p2 := Process(a), Process(b)
	if p1 == "" || p2 == "" {
		return 0
	}

	base := float64(Ratio(p1, p2))
	l1, l2 := float64(utf8.RuneCountInString(p1)), float64(utf8.RuneCountInString(p2))
	lenRatio := math.Max(l1, l2) / math.Min(l1, l2)

	if lenRatio < partialLengthRatio {
		tsor := float64(TokenSortRatio(p1, p2)) * unbaseScale
		tser := float64(TokenSetRatio(p1, p2)) * unbaseScale
		return round(math.Max(base, math.Max(tsor, tser)))
	}

	scale := partialScale
	if lenRatio >= longLengthRatio {
		scale = longPartialScale
	}
	partial := float64(PartialRatio(p1, p2)) * scale
	ptsor := float64(partialTokenSortRatio(p1, p2)) * unbaseScale * scale
	ptser := float64(partialTokenSetRatio(p1, p2)) * unbaseScale * scale
	return round(math.Max(math.Max(base, partial), math.Max(ptsor, ptser)))
}

// ExtractOne returns the highest-scoring choice for query using WRatio.
// Ties keep the earliest choice. ok is false when choices is empty.
func ExtractOne(query string, choices []string) (Match, bool) {
	return ExtractOneWith(query, choices, WRatio)
}

// ExtractOneWith is ExtractOne with a custom scorer.
func ExtractOneWith(query string, choices []string, score Scorer) (Match, bool) {
	if len(choices) == 0 {
		return Match{}, false
	}
	best := Match{Index: -1, Score: -1}
	for i, c := range choices {
		s := score(query, c)
		if s > best.Score {
			best = Match{Choice: c, Score: s, Index: i}
		}
	}
	return best, true
}

func round(f float64) int {
	return int(math.Round(f))
}
