package fetcher

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/semaphore"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration // per page fetch
	ProbeTimeout time.Duration // per liveness probe
	MaxInFlight  int64         // concurrent outbound requests across all hosts
	PerHostRPS   float64       // 0 disables per-host limiting
	MaxBodyBytes int64
}

// HTTPFetcher implements PageFetcher and Prober over net/http. Every request
// holds a slot of a shared semaphore and runs under its own timeout; failures
// are never retried.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
	sem    *semaphore.Weighted
	hosts  *HostLimiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 16
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; homepage-finder/1.0)"
	}
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: opts.ProbeTimeout,
		}).DialContext,
		TLSHandshakeTimeout: opts.ProbeTimeout,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:  opts,
		sem:   semaphore.NewWeighted(opts.MaxInFlight),
		hosts: NewHostLimiter(opts.PerHostRPS, 1),
	}
}

// do acquires an in-flight slot and the host token, then sends req.
func (f *HTTPFetcher) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, eris.Wrap(err, "fetcher: acquire slot")
	}
	defer f.sem.Release(1)

	if err := f.hosts.Wait(ctx, req.URL.String()); err != nil {
		return nil, eris.Wrap(err, "fetcher: host rate limit")
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept-Language", "ja,en;q=0.8")
	return f.client.Do(req)
}

// Fetch downloads rawURL and decodes it to UTF-8. Non-2xx responses and
// non-HTML content are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.do(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, eris.Errorf("fetcher: %s is not html (%s)", rawURL, contentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read body")
	}

	body, name := decode(raw, contentType)
	zap.L().Debug("fetcher: page fetched",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.String("charset", name),
		zap.Int("bytes", len(raw)),
	)

	return &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Charset:     name,
		Body:        body,
	}, nil
}

// decode converts raw to UTF-8 using the Content-Type charset, a <meta>
// declaration or content sniffing, in that order. Shift_JIS and EUC-JP
// pages are common among small Japanese businesses.
//
// Sniffing only sees the first 1024 bytes, so a page with a long ASCII head
// and no declaration is guessed as windows-1252. Such a body is kept as UTF-8
// when the whole of it is valid UTF-8.
func decode(raw []byte, contentType string) ([]byte, string) {
	enc, name, certain := charset.DetermineEncoding(raw, contentType)
	if name == "utf-8" {
		return raw, name
	}
	if !certain && name == "windows-1252" && validUTF8(raw) {
		return raw, "utf-8"
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return raw, "utf-8"
	}
	return out, name
}

// validUTF8 reports whether b is valid UTF-8, ignoring one trailing rune cut
// short by the body size limit.
func validUTF8(b []byte) bool {
	if utf8.Valid(b) {
		return true
	}
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			return !utf8.FullRune(b[len(b)-i:]) && utf8.Valid(b[:len(b)-i])
		}
	}
	return false
}

// Probe sends a HEAD request, falling back to GET when the server rejects
// HEAD. Redirects are followed. Any transport error or a final status of 400
// or above marks the URL unreachable.
func (f *HTTPFetcher) Probe(ctx context.Context, rawURL string) ProbeResult {
	start := time.Now()
	res := f.probe(ctx, rawURL, http.MethodHead)
	if res.StatusCode == http.StatusMethodNotAllowed || res.StatusCode == http.StatusNotImplemented ||
		res.StatusCode == http.StatusForbidden {
		res = f.probe(ctx, rawURL, http.MethodGet)
	}
	res.Elapsed = time.Since(start)
	return res
}

func (f *HTTPFetcher) probe(ctx context.Context, rawURL, method string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, f.opts.ProbeTimeout)
	defer cancel()

	res := ProbeResult{Method: method}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	resp, err := f.do(ctx, req)
	if err != nil {
		res.Error = err.Error()
		zap.L().Debug("fetcher: probe failed", zap.String("url", rawURL), zap.Error(err))
		return res
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	res.StatusCode = resp.StatusCode
	res.FinalURL = resp.Request.URL.String()
	res.Reachable = resp.StatusCode < 400
	return res
}

// Reachable reports whether rawURL answers a probe.
func (f *HTTPFetcher) Reachable(ctx context.Context, rawURL string) bool {
	return f.Probe(ctx, rawURL).Reachable
}
