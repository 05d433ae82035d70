package scorer

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/config"
	"github.com/sells-group/homepage-finder/internal/fuzzy"
	"github.com/sells-group/homepage-finder/internal/lists"
	"github.com/sells-group/homepage-finder/internal/location"
	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/region"
	"github.com/sells-group/homepage-finder/internal/textnorm"
	"github.com/sells-group/homepage-finder/internal/urlutil"
)

// Liveness reports whether a URL answers at all.
type Liveness interface {
	Reachable(ctx context.Context, rawURL string) bool
}

// Exclusion reasons.
const (
	ReasonInvalidURL  = "invalid_url"
	ReasonBlacklisted = "blacklisted"
)

// Exclusion marks a hit that produced no candidate.
type Exclusion struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Scorer evaluates search hits against a company record. It holds no
// per-call state and is safe for concurrent use.
type Scorer struct {
	cfg      config.ScoringConfig
	lists    lists.Lists
	matcher  *fuzzy.Matcher
	resolver location.Resolver
	live     Liveness

	generic    lists.Set
	lowTrust   lists.Set
	categories []string
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithMatcher replaces the default name/domain matcher.
func WithMatcher(m *fuzzy.Matcher) Option {
	return func(s *Scorer) {
		if m != nil {
			s.matcher = m
		}
	}
}

// New builds a Scorer. A nil resolver disables page-based location checks
// and a nil liveness checker disables the reachability probe.
func New(cfg config.ScoringConfig, l lists.Lists, resolver location.Resolver, live Liveness, opts ...Option) (*Scorer, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(l.CategoryPrefixes))
	for _, p := range l.CategoryPrefixes {
		if p = strings.ToLower(textnorm.NFKC(strings.TrimSpace(p))); p != "" {
			categories = append(categories, p)
		}
	}
	slices.SortStableFunc(categories, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	s := &Scorer{
		cfg:        cfg,
		lists:      l,
		matcher:    fuzzy.NewMatcher(nil),
		resolver:   resolver,
		live:       live,
		generic:    lists.NewSet(l.GenericWords),
		lowTrust:   lists.NewSet(l.LowTrustTLDs),
		categories: categories,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the scoring configuration in use.
func (s *Scorer) Config() config.ScoringConfig { return s.cfg }

// evaluation carries the values shared by the contributions of one hit.
type evaluation struct {
	ctx     context.Context
	company model.CompanyRecord
	hit     model.SearchHit
	domain  string
	portal  bool
	target  string
	text    string

	similarity float64

	locateOnce sync.Once
	location   model.LocationSignal
}

// Score evaluates one hit. A non-nil Exclusion means the hit was dropped and
// the returned candidate is empty.
func (s *Scorer) Score(ctx context.Context, company model.CompanyRecord, hit model.SearchHit, queryLabel string) (model.ScoredCandidate, *Exclusion) {
	domain := urlutil.DomainOf(hit.URL)
	if domain == "" {
		zap.L().Debug("scorer: dropping hit with invalid url", zap.String("url", hit.URL))
		return model.ScoredCandidate{}, &Exclusion{URL: hit.URL, Reason: ReasonInvalidURL}
	}
	if urlutil.MatchesDomain(domain, s.lists.BlacklistDomains) {
		zap.L().Debug("scorer: dropping blacklisted hit",
			zap.String("company", company.CompanyName),
			zap.String("domain", domain),
		)
		return model.ScoredCandidate{}, &Exclusion{URL: hit.URL, Reason: ReasonBlacklisted}
	}

	e := &evaluation{
		ctx:      ctx,
		company:  company,
		hit:      hit,
		domain:   domain,
		portal:   urlutil.MatchesDomain(domain, s.lists.PortalDomains),
		target:   region.Canonicalize(company.Prefecture),
		text:     hit.Title + " " + hit.Description,
		location: model.NoLocation(),
	}

	b := model.ScoreBreakdown{
		TopPage:            s.safe(model.ContribTopPage, e, s.topPage),
		DomainSimilarity:   s.safe(model.ContribDomainSimilarity, e, s.domainSimilarity),
		TLD:                s.safe(model.ContribTLD, e, s.tld),
		OfficialKeyword:    s.safe(model.ContribOfficialKeyword, e, s.officialKeyword),
		SearchRank:         s.safe(model.ContribSearchRank, e, s.searchRank),
		PathPenalty:        s.safe(model.ContribPathPenalty, e, s.pathPenalty),
		Locality:           s.safe(model.ContribLocality, e, s.locality),
		PortalPenalty:      s.safe(model.ContribPortalPenalty, e, s.portalPenalty),
		Reachability:       s.safe(model.ContribReachability, e, s.reachability),
		GeographicMismatch: s.safe(model.ContribGeographicMismatch, e, s.geographicMismatch),
		GenericWord:        s.safe(model.ContribGenericWord, e, s.genericWord),
		HeadMatch:          s.safe(model.ContribHeadMatch, e, s.headMatch),
	}
	total := b.Total()

	return model.ScoredCandidate{
		URL:              hit.URL,
		Title:            hit.Title,
		Description:      hit.Description,
		Rank:             hit.Rank,
		QueryLabel:       queryLabel,
		DomainSimilarity: e.similarity,
		IsTopPage:        urlutil.IsTopPage(hit.URL),
		TotalScore:       total,
		Judgment:         Judge(total, s.cfg),
		Breakdown:        b,
		Location:         e.location,
	}, nil
}

// safe runs one contribution. A panic inside it is logged and scores 0 so a
// single faulty signal cannot abort the candidate.
func (s *Scorer) safe(name string, e *evaluation, fn func(*evaluation) int) (v int) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("scorer: contribution failed",
				zap.String("contribution", name),
				zap.String("url", e.hit.URL),
				zap.Any("panic", r),
			)
			v = 0
		}
	}()
	return fn(e)
}

// locate resolves the page location at most once per evaluation. Portal
// pages and companies without a known prefecture are never fetched.
func (s *Scorer) locate(e *evaluation) model.LocationSignal {
	e.locateOnce.Do(func() {
		if s.resolver == nil || e.portal || e.target == "" {
			return
		}
		e.location = s.resolver.Resolve(e.ctx, e.hit.URL)
	})
	return e.location
}

func (s *Scorer) topPage(e *evaluation) int {
	if urlutil.IsTopPage(e.hit.URL) {
		return s.cfg.TopPageBonus
	}
	return 0
}

func (s *Scorer) domainSimilarity(e *evaluation) int {
	e.similarity = s.matcher.DomainSimilarity(e.company.CompanyName, e.hit.URL)
	switch {
	case e.similarity >= s.cfg.DomainExactThreshold:
		return s.cfg.DomainExactBonus
	case e.similarity >= s.cfg.DomainSimilarThreshold:
		return s.cfg.DomainSimilarBonus
	}
	return 0
}

func (s *Scorer) tld(e *evaluation) int {
	if s.lowTrust.Has(urlutil.TLD(e.domain)) {
		return s.cfg.LowTrustTLDPenalty
	}
	return 0
}

func (s *Scorer) officialKeyword(e *evaluation) int {
	text := strings.ToLower(textnorm.NFKC(e.text))
	for _, kw := range s.lists.OfficialKeywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return s.cfg.OfficialKeywordBonus
		}
	}
	return 0
}

func (s *Scorer) searchRank(e *evaluation) int {
	if e.hit.Rank >= 1 && e.hit.Rank <= s.cfg.SearchRankMax {
		return s.cfg.SearchRankBonus
	}
	return 0
}

func (s *Scorer) pathPenalty(e *evaluation) int {
	path := strings.ToLower(urlutil.PathOf(e.hit.URL))
	for _, kw := range s.lists.PathPenaltyKeywords {
		if kw != "" && strings.Contains(path, kw) {
			return s.cfg.PathPenalty
		}
	}
	return 0
}

// locality scores region evidence in the hit text. When the text says
// nothing either way it falls back to the page's own location signal.
func (s *Scorer) locality(e *evaluation) int {
	if e.target == "" {
		return 0
	}

	score := 0
	if region.Mentions(e.text, e.target) {
		score += s.cfg.LocalityRegionBonus
	}

	codes := region.AreaCodesFor(e.target)
	for _, phone := range region.FindPhones(e.text) {
		if slices.Contains(codes, region.AreaCode(phone)) {
			score += s.cfg.LocalityPhoneBonus
			break
		}
	}

	for _, name := range region.FindAllFormal(e.text) {
		if name != e.target {
			score += s.cfg.LocalityOtherRegionPenalty
			break
		}
	}

	if score != 0 || e.portal {
		return score
	}

	loc := s.locate(e)
	if !loc.Found() {
		return 0
	}
	magnitude := s.byConfidence(loc.Confidence, s.cfg.LocalityFallbackHigh, s.cfg.LocalityFallbackMedium, s.cfg.LocalityFallbackLow)
	if region.Canonicalize(loc.Region) == e.target {
		return magnitude
	}
	return -magnitude
}

func (s *Scorer) portalPenalty(e *evaluation) int {
	if e.portal {
		return s.cfg.PortalPenalty
	}
	return 0
}

func (s *Scorer) reachability(e *evaluation) int {
	if s.live == nil {
		return 0
	}
	if !s.live.Reachable(e.ctx, e.hit.URL) {
		return s.cfg.ReachabilityPenalty
	}
	return 0
}

func (s *Scorer) geographicMismatch(e *evaluation) int {
	loc := s.locate(e)
	if !loc.Found() || e.target == "" {
		return 0
	}
	if region.Canonicalize(loc.Region) == e.target {
		return 0
	}
	return s.byConfidence(loc.Confidence, s.cfg.GeoMismatchHigh, s.cfg.GeoMismatchMedium, s.cfg.GeoMismatchLow)
}

// genericWord penalizes a domain whose only overlap with the company name is
// generic vocabulary such as "hair" or "salon".
func (s *Scorer) genericWord(e *evaluation) int {
	domainTokens := urlutil.DomainTokens(e.domain)
	joined := strings.Join(domainTokens, "")
	if joined == "" {
		return 0
	}

	overlaps := 0
	for _, tok := range s.nameTokens(e.company.CompanyName) {
		if !slices.Contains(domainTokens, tok) && (len(tok) < 3 || !strings.Contains(joined, tok)) {
			continue
		}
		if !s.generic.Has(tok) {
			return 0
		}
		overlaps++
	}
	if overlaps == 0 {
		return 0
	}
	return s.cfg.GenericWordPenalty
}

// nameTokens lists the distinct lower-case tokens of every name variant.
func (s *Scorer) nameTokens(companyName string) []string {
	var tokens []string
	for _, v := range s.matcher.NameVariants(companyName) {
		for _, tok := range strings.Fields(fuzzy.Process(v)) {
			if len(tok) >= 2 && !slices.Contains(tokens, tok) {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// headMatch checks whether the hit title names the business once a leading
// category word is removed from the company name.
func (s *Scorer) headMatch(e *evaluation) int {
	name := s.headName(e.company.CompanyName)
	if name == "" {
		return 0
	}

	if s.titleMentions(e.hit.Title, name) {
		if e.portal {
			return s.cfg.HeadMatchPortalBonus
		}
		return s.cfg.HeadMatchBonus
	}
	if e.portal {
		return s.cfg.HeadMissPortalPenalty
	}
	return s.cfg.HeadMissPenalty
}

// headName returns the cleaned company name without a leading category
// word. The name is left whole when nothing would remain.
func (s *Scorer) headName(companyName string) string {
	name := textnorm.StripLegalSuffix(textnorm.NFKC(textnorm.NormalizeName(companyName)))
	for _, prefix := range s.categories {
		if len(name) <= len(prefix) || !strings.EqualFold(name[:len(prefix)], prefix) {
			continue
		}
		rest := name[len(prefix):]
		if isASCII(prefix) {
			r, _ := utf8.DecodeRuneInString(rest)
			if r < utf8.RuneSelf && isASCIIAlnum(byte(r)) {
				continue
			}
		}
		rest = strings.TrimFunc(rest, isSeparator)
		if rest != "" {
			return rest
		}
	}
	return name
}

func (s *Scorer) titleMentions(title, name string) bool {
	foldedTitle := textnorm.Fold(title)
	foldedName := textnorm.Fold(name)
	if foldedName == "" || foldedTitle == "" {
		return false
	}
	if strings.Contains(foldedTitle, foldedName) {
		return true
	}
	if strings.Contains(textnorm.Compact(title), textnorm.Compact(name)) {
		return true
	}
	for _, word := range strings.Fields(foldedName) {
		if utf8.RuneCountInString(word) < 2 || s.generic.Has(word) {
			continue
		}
		if strings.Contains(foldedTitle, word) {
			return true
		}
	}
	return false
}

func (s *Scorer) byConfidence(c model.Confidence, high, medium, low int) int {
	switch c {
	case model.ConfidenceHigh:
		return high
	case model.ConfidenceMedium:
		return medium
	case model.ConfidenceLow:
		return low
	}
	return 0
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isASCIIAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '　', '・', '-', '_', '/', '|', '.', ',', '&':
		return true
	}
	return false
}
