// Package textnorm cleans Japanese company names and converts them to forms
// comparable with Latin-alphabet domain labels.
package textnorm

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// legalSuffixes lists corporate-entity markers removed from either end of a
// name. Sorted longest first at init so compound forms win.
var legalSuffixes = []string{
	"株式会社", "有限会社", "合同会社", "合資会社", "合名会社",
	"一般社団法人", "公益社団法人", "一般財団法人", "公益財団法人",
	"医療法人社団", "医療法人", "社会福祉法人", "特定非営利活動法人", "NPO法人",
	"(株)", "（株）", "㈱", "(有)", "（有）", "㈲", "(合)", "（合）",
	"Co., Ltd.", "Co.,Ltd.", "Co., Ltd", "Co.,Ltd", "Co. Ltd.", "Co Ltd",
	"Corporation", "Corp.", "Inc.", "Inc", "K.K.", "LLC", "Ltd.", "Ltd",
}

func init() {
	sort.SliceStable(legalSuffixes, func(i, j int) bool {
		return len(legalSuffixes[i]) > len(legalSuffixes[j])
	})
}

var (
	annotationRe = regexp.MustCompile(`【[^】]*】`)
	spaceRe      = regexp.MustCompile(`\s+`)
	katakanaRe   = regexp.MustCompile(`[ァ-ヺー]+`)
)

// NormalizeName removes bracketed reading annotations such as 【カブシキガイシャ】
// and collapses whitespace.
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}
	s := annotationRe.ReplaceAllString(raw, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripLegalSuffix removes corporate-entity markers from the start and end
// of name, repeating until nothing more is removed.
func StripLegalSuffix(name string) string {
	s := trimSeparators(name)
	for {
		next := stripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripOnce(s string) string {
	for _, suf := range legalSuffixes {
		n := len(suf)
		if len(s) < n {
			continue
		}
		if strings.EqualFold(s[:n], suf) && boundaryAfter(s, n, suf) {
			return trimSeparators(s[n:])
		}
		if strings.EqualFold(s[len(s)-n:], suf) && boundaryBefore(s, len(s)-n, suf) {
			return trimSeparators(s[:len(s)-n])
		}
	}
	return s
}

// Latin markers must stand alone as words ("Zinc" is not "Inc").
func boundaryBefore(s string, i int, suf string) bool {
	if !isASCIIWord(suf) || i == 0 {
		return true
	}
	r := rune(s[i-1])
	return s[i-1] >= 0x80 || !(unicode.IsLetter(r) || unicode.IsDigit(r))
}

func boundaryAfter(s string, i int, suf string) bool {
	if !isASCIIWord(suf) || i == len(s) {
		return true
	}
	r := rune(s[i])
	return s[i] >= 0x80 || !(unicode.IsLetter(r) || unicode.IsDigit(r))
}

func isASCIIWord(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func trimSeparators(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '、' || r == '・' || r == '　'
	})
}

// ExtractKatakana returns every maximal katakana run in text joined by single
// spaces, or "" when there is none.
func ExtractKatakana(text string) string {
	return strings.Join(katakanaRe.FindAllString(text, -1), " ")
}

// Fold applies NFKC (full-width to half-width Latin, half-width to full-width
// kana), lower-cases Latin letters and replaces punctuation with spaces.
// Letters, digits and every CJK script are kept.
func Fold(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Compact removes all spaces and punctuation from a folded string.
func Compact(s string) string {
	return strings.ReplaceAll(Fold(s), " ", "")
}

// HasJapanese reports whether s contains kana or ideographs.
func HasJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// HasLatin reports whether s contains an ASCII letter.
func HasLatin(s string) bool {
	for _, r := range s {
		if r < 0x80 && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// NFKC returns the compatibility-composed form of s.
func NFKC(s string) string {
	return norm.NFKC.String(s)
}
