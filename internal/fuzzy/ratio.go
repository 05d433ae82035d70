// Package fuzzy scores how closely a company name matches a domain label.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// indel weights a substitution as one deletion plus one insertion so the
// normalized distance matches the classic sequence-matcher ratio.
var indel = levenshtein.NewParams().SubCost(2)

// Process lower-cases s, turns every non-alphanumeric rune into a space and
// collapses the result.
func Process(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Ratio returns the normalized indel similarity of a and b in [0,100]. Inputs
// are compared as given.
func Ratio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la+lb == 0 {
		return 100
	}
	dist := levenshtein.Distance(a, b, indel)
	return 100 * (1 - float64(dist)/float64(la+lb))
}

// PartialRatio returns the best Ratio of the shorter string against every
// equal-length window of the longer one.
func PartialRatio(a, b string) float64 {
	s, l := []rune(a), []rune(b)
	if len(s) > len(l) {
		s, l = l, s
	}
	if len(s) == 0 {
		return 0
	}
	short := string(s)
	best := 0.0
	for i := 0; i+len(s) <= len(l); i++ {
		if r := Ratio(short, string(l[i:i+len(s)])); r > best {
			best = r
			if best == 100 {
				return best
			}
		}
	}
	for i := 1; i < len(s); i++ {
		if r := Ratio(short, string(l[:i])); r > best {
			best = r
		}
		if r := Ratio(short, string(l[len(l)-i:])); r > best {
			best = r
		}
	}
	return best
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// TokenSortRatio compares a and b after processing and sorting their tokens.
func TokenSortRatio(a, b string) float64 {
	a, b = Process(a), Process(b)
	if a == "" || b == "" {
		return 0
	}
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared tokens of a and b against each side's
// remainder. A full subset scores 100.
func TokenSetRatio(a, b string) float64 {
	a, b = Process(a), Process(b)
	if a == "" || b == "" {
		return 0
	}
	setA, setB := tokenSet(a), tokenSet(b)

	var sect, onlyA, onlyB []string
	for t := range setA {
		if setB[t] {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if !setA[t] {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	if len(sect) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	base := strings.Join(sect, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := Ratio(withA, withB)
	if base != "" {
		best = max(best, Ratio(base, withA), Ratio(base, withB))
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

// WRatio blends full, partial and token-based ratios, scaling partial
// matches down as the length difference grows.
func WRatio(a, b string) float64 {
	a, b = Process(a), Process(b)
	if a == "" || b == "" {
		return 0
	}
	la, lb := float64(len([]rune(a))), float64(len([]rune(b)))
	lenRatio := max(la, lb) / min(la, lb)

	best := Ratio(a, b)
	if lenRatio < 1.5 {
		tokens := max(TokenSortRatio(a, b), TokenSetRatio(a, b))
		return max(best, tokens*0.95)
	}

	scale := 0.9
	if lenRatio >= 8 {
		scale = 0.6
	}
	best = max(best, PartialRatio(a, b)*scale)
	best = max(best, PartialRatio(sortedTokens(a), sortedTokens(b))*0.95*scale)
	return best
}
