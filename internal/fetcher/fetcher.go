// Package fetcher performs the bounded, best-effort page fetches and liveness
// probes used while scoring candidate homepages.
package fetcher

import (
	"context"
	"time"
)

// Page is an HTML document decoded to UTF-8.
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Charset     string
	Body        []byte
}

// ProbeResult reports whether a URL answered a liveness probe.
type ProbeResult struct {
	Reachable  bool          `json:"reachable"`
	StatusCode int           `json:"status_code,omitempty"`
	FinalURL   string        `json:"final_url,omitempty"`
	Method     string        `json:"method,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	Error      string        `json:"error,omitempty"`
}

// PageFetcher downloads an HTML page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Prober checks whether a URL is reachable.
type Prober interface {
	Probe(ctx context.Context, rawURL string) ProbeResult
}
