package fuzzy

import (
	"strings"

	"github.com/sells-group/homepage-finder/internal/textnorm"
	"github.com/sells-group/homepage-finder/internal/urlutil"
)

// ExactThreshold is the similarity at or above which a domain is treated
// as the company's own name.
const ExactThreshold = 95.0

// Matcher compares company names with domain labels. The transliteration
// function is injectable so tests can avoid loading the dictionary.
type Matcher struct {
	transliterate func(string) string
}

// NewMatcher returns a Matcher using transliterate for Japanese text. A nil
// function falls back to textnorm.Transliterate.
func NewMatcher(transliterate func(string) string) *Matcher {
	if transliterate == nil {
		transliterate = textnorm.Transliterate
	}
	return &Matcher{transliterate: transliterate}
}

var defaultMatcher = NewMatcher(nil)

// DomainSimilarity uses the default Matcher.
func DomainSimilarity(companyName, rawURL string) float64 {
	return defaultMatcher.DomainSimilarity(companyName, rawURL)
}

// NameVariants builds the deduplicated set of forms under which a company
// name may appear in a domain: the cleaned name, its romanized form, the
// romanized katakana portion and the lower-cased Latin form.
func (m *Matcher) NameVariants(companyName string) []string {
	name := textnorm.StripLegalSuffix(textnorm.NFKC(textnorm.NormalizeName(companyName)))
	if name == "" {
		return nil
	}

	var variants []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	add(name)
	lower := strings.ToLower(name)
	if textnorm.HasJapanese(name) {
		if tr := m.transliterate(name); tr != lower {
			add(tr)
		}
		if kana := textnorm.ExtractKatakana(name); kana != "" {
			add(m.transliterate(kana))
		}
	}
	if textnorm.HasLatin(name) {
		add(lower)
	}
	return variants
}

// DomainSimilarity returns the best similarity in [0,100] between any name
// variant and the first label of the URL's domain.
func (m *Matcher) DomainSimilarity(companyName, rawURL string) float64 {
	domain := urlutil.DomainOf(rawURL)
	label := urlutil.FirstLabel(domain)
	if label == "" {
		return 0
	}
	tokens := urlutil.DomainTokens(domain)

	best := 0.0
	for _, v := range m.NameVariants(companyName) {
		score := max(WRatio(v, label), TokenSortRatio(v, label), tokenSplitRatio(v, tokens))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// tokenSplitRatio compares every name token against every domain token and
// the concatenated name against the concatenated domain tokens.
func tokenSplitRatio(name string, domainTokens []string) float64 {
	nameTokens := strings.Fields(Process(name))
	if len(nameTokens) == 0 || len(domainTokens) == 0 {
		return 0
	}

	best := 0.0
	for _, nt := range nameTokens {
		for _, dt := range domainTokens {
			if nt == dt {
				return 100
			}
			best = max(best, Ratio(nt, dt))
		}
	}
	return max(best, Ratio(strings.Join(nameTokens, ""), strings.Join(domainTokens, "")))
}
