package region

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var romajiSuffixes = []string{" prefecture", "-prefecture", "-ken", " ken", "-fu", " fu", "-to", " to", "-dou", "-do"}

// Canonicalize maps a formal, suffix-stripped or romanized prefecture
// spelling to its formal name. Unknown input yields "".
func Canonicalize(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	if s == "" {
		return ""
	}
	if p, ok := byName[s]; ok {
		return p.Name
	}
	// Trailing generic characters such as "東京都内" or "大阪府下".
	for _, p := range prefectures {
		if strings.HasPrefix(s, p.Name) {
			return p.Name
		}
	}

	lower := strings.ToLower(s)
	for _, suf := range romajiSuffixes {
		lower = strings.TrimSuffix(lower, suf)
	}
	lower = strings.TrimSpace(lower)
	if p, ok := byRomaji[lower]; ok {
		return p.Name
	}
	return ""
}

type needle struct {
	text   string
	name   string
	romaji bool
}

// needles lists every searchable spelling, longest first, so that 京都 is
// never matched inside 東京都. Built in init after the romaji table.
// formalNeedles holds the formal names only.
var needles, formalNeedles []needle

func buildNeedles(formalOnly bool) []needle {
	var ns []needle
	for _, p := range prefectures {
		ns = append(ns, needle{p.Name, p.Name, false})
		if p.Short != p.Name && !formalOnly {
			ns = append(ns, needle{p.Short, p.Name, false})
		}
	}
	if !formalOnly {
		for r, p := range byRomaji {
			ns = append(ns, needle{r, p.Name, true})
		}
	}
	sort.SliceStable(ns, func(i, j int) bool {
		if len(ns[i].text) != len(ns[j].text) {
			return len(ns[i].text) > len(ns[j].text)
		}
		return ns[i].text < ns[j].text
	})
	return ns
}

type hit struct {
	pos  int
	name string
}

// FindAll returns the distinct prefectures mentioned in text in order of
// first appearance. Japanese spellings match anywhere; romanized spellings
// must stand as whole words.
func FindAll(text string) []string {
	return findAll(text, needles)
}

// FindAllFormal is FindAll restricted to formal names such as 石川県. Short
// forms like 石川 double as surnames and company names, so only the formal
// spelling counts as a mention of some other prefecture.
func FindAllFormal(text string) []string {
	return findAll(text, formalNeedles)
}

func findAll(text string, needles []needle) []string {
	if text == "" {
		return nil
	}
	text = norm.NFKC.String(text)
	lower := asciiLower(text)
	covered := make([]bool, len(text))

	var hits []hit
	for _, n := range needles {
		hay := text
		if n.romaji {
			hay = lower
		}
		for start := 0; start < len(hay); {
			idx := strings.Index(hay[start:], n.text)
			if idx < 0 {
				break
			}
			i := start + idx
			j := i + len(n.text)
			start = j
			if anyCovered(covered, i, j) {
				continue
			}
			if n.romaji && !wordBounded(lower, i, j) {
				continue
			}
			for k := i; k < j; k++ {
				covered[k] = true
			}
			hits = append(hits, hit{i, n.name})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })
	var out []string
	seen := make(map[string]bool)
	for _, h := range hits {
		if !seen[h.name] {
			seen[h.name] = true
			out = append(out, h.name)
		}
	}
	return out
}

// First returns the first prefecture mentioned in text, or "".
func First(text string) string {
	if found := FindAll(text); len(found) > 0 {
		return found[0]
	}
	return ""
}

// Mentions reports whether text names the given prefecture.
func Mentions(text, prefecture string) bool {
	want := Canonicalize(prefecture)
	if want == "" {
		return false
	}
	for _, name := range FindAll(text) {
		if name == want {
			return true
		}
	}
	return false
}

func anyCovered(covered []bool, i, j int) bool {
	for k := i; k < j; k++ {
		if covered[k] {
			return true
		}
	}
	return false
}

// asciiLower lower-cases ASCII letters only so byte offsets are preserved.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func isASCIILetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func wordBounded(s string, i, j int) bool {
	if i > 0 && isASCIILetter(s[i-1]) {
		return false
	}
	if j < len(s) && isASCIILetter(s[j]) {
		return false
	}
	return true
}
