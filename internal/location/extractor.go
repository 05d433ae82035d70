// Package location infers which prefecture a website belongs to by reading
// its structured data, its footer and, as a last resort, its contact pages.
package location

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/fetcher"
	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/region"
	"github.com/sells-group/homepage-finder/internal/urlutil"
)

// Resolver returns the location signal for a URL. Implementations never
// fail: any problem yields model.NoLocation().
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) model.LocationSignal
}

// DefaultContactPageLimit caps how many contact-like links are followed.
const DefaultContactPageLimit = 3

// footerSelector matches page sections that usually carry the business
// address and phone number.
const footerSelector = "footer, address, #footer, [id*=footer], [class*=footer], " +
	"[class*=contact], [class*=company], [class*=access], [class*=info], [id*=contact], [id*=info]"

var (
	contactHrefRe = regexp.MustCompile(`(?i)(contact|about|company|corporate|info|access|inquiry|gaiyou|gaiyo|kaisya|kaisha|profile|otoiawase|toiawase|shop|salon|store)`)
	contactTextRe = regexp.MustCompile(`会社概要|会社案内|企業情報|お問い合わせ|お問合せ|問い合わせ|アクセス|店舗情報|店舗案内|サロン情報|医院概要|事業所`)
)

// Extractor implements Resolver by fetching pages through a PageFetcher.
type Extractor struct {
	fetcher      fetcher.PageFetcher
	contactLimit int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithContactPageLimit sets how many contact-like links stage C may follow.
func WithContactPageLimit(n int) Option {
	return func(e *Extractor) {
		if n >= 0 {
			e.contactLimit = n
		}
	}
}

// NewExtractor creates an Extractor that fetches with f.
func NewExtractor(f fetcher.PageFetcher, opts ...Option) *Extractor {
	e := &Extractor{fetcher: f, contactLimit: DefaultContactPageLimit}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Resolve runs the three stages in order and returns the first signal
// found: structured data (high), page text (medium), contact pages (low).
func (e *Extractor) Resolve(ctx context.Context, rawURL string) (sig model.LocationSignal) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("location: extractor panic", zap.String("url", rawURL), zap.Any("panic", r))
			sig = model.NoLocation()
		}
	}()

	doc, base, ok := e.load(ctx, rawURL)
	if !ok {
		return model.NoLocation()
	}

	if sig, ok := structuredData(doc); ok {
		return sig
	}

	links := contactLinks(doc, base, e.contactLimit)
	stripNoise(doc)

	if sig, ok := pageText(doc); ok {
		sig.Confidence = model.ConfidenceMedium
		sig.Method = model.MethodPageText
		return sig
	}

	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		sub, _, ok := e.load(ctx, link)
		if !ok {
			continue
		}
		stripNoise(sub)
		if sig, ok := pageText(sub); ok {
			sig.Confidence = model.ConfidenceLow
			sig.Method = model.MethodContactPage
			return sig
		}
	}

	return model.NoLocation()
}

func (e *Extractor) load(ctx context.Context, rawURL string) (*goquery.Document, *url.URL, bool) {
	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		zap.L().Debug("location: fetch failed", zap.String("url", rawURL), zap.Error(err))
		return nil, nil, false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		zap.L().Debug("location: parse failed", zap.String("url", rawURL), zap.Error(err))
		return nil, nil, false
	}
	final := page.FinalURL
	if final == "" {
		final = rawURL
	}
	base, err := url.Parse(final)
	if err != nil {
		return nil, nil, false
	}
	return doc, base, true
}

func stripNoise(doc *goquery.Document) {
	doc.Find("script, style, noscript, template, iframe").Remove()
}

// pageText looks for a phone area code, then a postal code, then a
// prefecture name, in footer-like sections first and the whole page second.
func pageText(doc *goquery.Document) (model.LocationSignal, bool) {
	var parts []string
	doc.Find(footerSelector).Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	if sig, ok := TextSignal(strings.Join(parts, "\n")); ok {
		return sig, true
	}
	return TextSignal(selectionText(doc.Find("body")))
}

func selectionText(s *goquery.Selection) string {
	var parts []string
	s.Each(func(_ int, sel *goquery.Selection) {
		parts = append(parts, sel.Text())
	})
	return strings.Join(parts, "\n")
}

// TextSignal infers a region from free text. The first phone number with a
// known area code wins, then the first mappable postal code, then the first
// prefecture name. Confidence and method are left for the caller to set.
func TextSignal(text string) (model.LocationSignal, bool) {
	if strings.TrimSpace(text) == "" {
		return model.LocationSignal{}, false
	}
	sig := model.LocationSignal{City: region.FindCity(text)}

	phones := region.FindPhones(text)
	postals := region.FindPostalCodes(text)
	if len(phones) > 0 {
		sig.PhoneNumber = phones[0]
	}
	if len(postals) > 0 {
		sig.PostalCode = postals[0]
	}

	for _, p := range phones {
		if r := region.FromPhone(p); r != "" {
			sig.Region, sig.PhoneNumber = r, p
			return sig, true
		}
	}
	for _, p := range postals {
		if r := region.FromPostalCode(p); r != "" {
			sig.Region, sig.PostalCode = r, p
			return sig, true
		}
	}
	if r := region.First(text); r != "" {
		sig.Region = r
		return sig, true
	}
	return model.LocationSignal{}, false
}

// contactLinks returns up to limit same-site links whose href or anchor text
// suggests a contact, company or access page.
func contactLinks(doc *goquery.Document, base *url.URL, limit int) []string {
	if limit <= 0 {
		return nil
	}
	self := strings.TrimSuffix(base.String(), "/")
	seen := map[string]bool{self: true}
	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return true
		}
		if !contactHrefRe.MatchString(href) && !contactTextRe.MatchString(s.Text()) {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return true
		}
		link := abs.String()
		if !urlutil.SameHost(link, base.String()) || seen[strings.TrimSuffix(link, "/")] {
			return true
		}
		seen[strings.TrimSuffix(link, "/")] = true
		links = append(links, link)
		return len(links) < limit
	})
	return links
}
