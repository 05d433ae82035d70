// Package urlutil extracts domains and path structure from candidate URLs.
package urlutil

import (
	"net/url"
	"strings"
)

// UnknownDepth is returned by PathDepth when the URL cannot be parsed. It
// means "unknown or very deep" and is never a real segment count.
const UnknownDepth = 999

// indexFiles are filenames that address a site root.
var indexFiles = map[string]bool{
	"index.html":   true,
	"index.htm":    true,
	"index.php":    true,
	"index.shtml":  true,
	"index.jsp":    true,
	"default.aspx": true,
	"default.asp":  true,
	"home.html":    true,
}

func parse(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return url.Parse(raw)
}

// DomainOf returns the lower-cased host of rawURL without a leading "www."
// label, or "" if the URL cannot be parsed.
func DomainOf(rawURL string) string {
	u, err := parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}

// PathOf returns the lower-cased URL path, or "" if unparseable.
func PathOf(rawURL string) string {
	u, err := parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Path)
}

// PathDepth counts the non-empty path segments of rawURL. A bare root or a
// root index file has depth 0.
func PathDepth(rawURL string) int {
	u, err := parse(rawURL)
	if err != nil || u.Host == "" {
		return UnknownDepth
	}
	p := strings.Trim(u.Path, "/")
	if p == "" || indexFiles[strings.ToLower(p)] {
		return 0
	}
	depth := 0
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// IsTopPage reports whether rawURL addresses a site root.
func IsTopPage(rawURL string) bool {
	return PathDepth(rawURL) == 0
}

// FirstLabel returns the leftmost label of domain.
func FirstLabel(domain string) string {
	if i := strings.IndexByte(domain, '.'); i >= 0 {
		return domain[:i]
	}
	return domain
}

// TLD returns the last label of domain.
func TLD(domain string) string {
	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		return domain[i+1:]
	}
	return domain
}

// DomainTokens splits the first label of domain on hyphens, underscores and
// dots, dropping tokens shorter than two characters.
func DomainTokens(domain string) []string {
	parts := strings.FieldsFunc(FirstLabel(domain), func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	tokens := parts[:0]
	for _, p := range parts {
		if len(p) >= 2 {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// MatchesDomain reports whether domain equals one of the entries or is a
// subdomain of one.
func MatchesDomain(domain string, entries []string) bool {
	if domain == "" {
		return false
	}
	for _, e := range entries {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), "www.")
		if e == "" {
			continue
		}
		if domain == e || strings.HasSuffix(domain, "."+e) {
			return true
		}
	}
	return false
}

// SameHost reports whether two URLs share a domain after www stripping.
func SameHost(a, b string) bool {
	da := DomainOf(a)
	return da != "" && da == DomainOf(b)
}
