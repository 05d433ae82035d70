// Package lists holds the curated domain and keyword lists the scorer
// consults. Lists are loaded once at startup and treated as read-only.
package lists

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Lists is the full set of curated lists.
type Lists struct {
	BlacklistDomains    []string `yaml:"blacklist_domains"`
	PortalDomains       []string `yaml:"portal_domains"`
	PathPenaltyKeywords []string `yaml:"path_penalty_keywords"`
	GenericWords        []string `yaml:"generic_words"`
	OfficialKeywords    []string `yaml:"official_keywords"`
	CategoryPrefixes    []string `yaml:"category_prefixes"`
	LowTrustTLDs        []string `yaml:"low_trust_tlds"`
}

// Defaults returns the compiled-in lists.
func Defaults() Lists {
	return Lists{
		BlacklistDomains: []string{
			"indeed.com", "jp.indeed.com", "townwork.net", "baitoru.com",
			"en-japan.com", "hellowork.mhlw.go.jp", "jobtalk.jp", "openwork.jp",
			"en-hyouban.com", "careerconnection.jp", "kuchikomi.co.jp",
			"baseconnect.in", "houjin.jp", "houjin-bangou.nta.go.jp",
			"salonboard.com", "biz-maps.com",
		},
		PortalDomains: []string{
			"hotpepper.jp", "beauty.hotpepper.jp", "ekiten.jp", "epark.jp",
			"rakuten.co.jp", "amazon.co.jp", "amazon.com", "facebook.com",
			"instagram.com", "twitter.com", "x.com", "youtube.com",
			"tiktok.com", "line.me", "ameblo.jp", "fc2.com", "note.com",
			"minimodel.jp", "retty.me", "gnavi.co.jp", "tabelog.com",
			"jalan.net", "yahoo.co.jp", "google.com", "goo.gl",
			"wikipedia.org", "mynavi.jp", "rikunabi.com", "doda.jp",
			"navitime.co.jp", "mapion.co.jp", "itp.ne.jp", "rasysa.com",
			"minne.com", "creema.jp", "peraichi.com",
		},
		PathPenaltyKeywords: []string{
			"recruit", "career", "job", "news", "blog", "topics",
			"column", "event", "press", "staff",
		},
		GenericWords: []string{
			"hair", "salon", "beauty", "barber", "nail", "eye", "esthe",
			"spa", "clinic", "dental", "shop", "store", "studio", "office",
			"group", "japan", "nihon", "nippon", "tokyo", "osaka", "net",
			"web", "info", "home", "official", "company", "corp", "co",
			"inc", "design", "house", "cafe", "biyoushitsu", "shika",
		},
		OfficialKeywords: []string{
			"公式", "オフィシャル", "official", "正規", "ホームページ", "home",
		},
		CategoryPrefixes: []string{
			"hair salon", "beauty salon", "salon", "barber", "hair",
			"clinic", "beauty", "nail", "eyelash",
			"美容室", "美容院", "理容室", "理髪店", "ヘアサロン", "ヘアー",
			"ヘア", "サロン", "クリニック", "歯科", "医院", "整骨院",
			"接骨院", "ネイルサロン", "エステサロン",
		},
		LowTrustTLDs: []string{
			"tk", "ml", "ga", "cf", "gq", "xyz", "top", "click", "work",
			"buzz", "icu", "loan",
		},
	}
}

// Load returns the defaults overridden by the YAML file at path. A key
// present in the file replaces the matching default list wholesale. An
// empty path returns the defaults.
func Load(path string) (Lists, error) {
	l := Defaults()
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Lists{}, eris.Wrapf(err, "lists: read %s", path)
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Lists{}, eris.Wrapf(err, "lists: parse %s", path)
	}

	l.normalize()
	return l, nil
}

// Write dumps the lists as YAML.
func Write(w io.Writer, l Lists) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return eris.Wrap(err, "lists: encode")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "lists: close encoder")
	}
	return nil
}

// normalize lowercases and trims entries, drops blanks and dedupes each
// list while keeping first-seen order.
func (l *Lists) normalize() {
	for _, list := range []*[]string{
		&l.BlacklistDomains, &l.PortalDomains, &l.PathPenaltyKeywords,
		&l.GenericWords, &l.OfficialKeywords, &l.CategoryPrefixes,
		&l.LowTrustTLDs,
	} {
		*list = clean(*list)
	}
	for i, tld := range l.LowTrustTLDs {
		l.LowTrustTLDs[i] = strings.TrimPrefix(tld, ".")
	}
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Set is a lookup table built from one list.
type Set map[string]struct{}

// NewSet builds a Set from entries, lowercased.
func NewSet(entries []string) Set {
	s := make(Set, len(entries))
	for _, e := range entries {
		s[strings.ToLower(e)] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[strings.ToLower(v)]
	return ok
}
