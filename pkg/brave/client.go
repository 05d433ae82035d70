// Package brave wraps the Brave Search web search API.
package brave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/homepage-finder/internal/resilience"
)

const (
	defaultBaseURL = "https://api.search.brave.com"
	webSearchPath  = "/res/v1/web/search"

	// MaxCount is the largest page size the API accepts.
	MaxCount = 20
)

// Client performs Brave Search API operations.
type Client interface {
	WebSearch(ctx context.Context, query string, count int) (*WebSearchResponse, error)
}

// WebSearchResponse is the subset of the web search response we consume.
type WebSearchResponse struct {
	Query QueryInfo  `json:"query"`
	Web   WebResults `json:"web"`
}

// QueryInfo echoes the query as the API understood it.
type QueryInfo struct {
	Original string `json:"original"`
}

// WebResults holds the organic results.
type WebResults struct {
	Results []WebResult `json:"results"`
}

// WebResult is one organic result.
type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the starting request rate. The rate backs off on 429
// responses and recovers on success. A non-positive rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = resilience.NewAdaptiveLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithCircuitBreaker makes the client fail fast while the API is down.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *httpClient) {
		c.breaker = cb
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *resilience.AdaptiveLimiter
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewClient creates a Brave Search API client. By default requests are
// throttled to 1 req/s, the free-plan limit.
func NewClient(apiKey string, opts ...Option) Client {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("brave", "web_search")

	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: resilience.NewAdaptiveLimiter(1, 1),
		retry:   retry,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) WebSearch(ctx context.Context, query string, count int) (*WebSearchResponse, error) {
	if count <= 0 || count > MaxCount {
		count = MaxCount
	}

	call := func(ctx context.Context) (*WebSearchResponse, error) {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*WebSearchResponse, error) {
			return c.webSearch(ctx, query, count)
		})
	}
	if c.breaker != nil {
		return resilience.ExecuteVal(ctx, c.breaker, call)
	}
	return call(ctx)
}

func (c *httpClient) webSearch(ctx context.Context, query string, count int) (*WebSearchResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "brave: rate limit")
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("search_lang", "jp")
	params.Set("country", "JP")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+webSearchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "brave: create request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "brave: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "brave: read response")
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests && c.limiter != nil {
			c.limiter.OnRateLimit()
		}
		statusErr := eris.Errorf("brave: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if te := resilience.FromResponse(statusErr, resp); te != nil {
			return nil, te
		}
		return nil, statusErr
	}
	if c.limiter != nil {
		c.limiter.OnSuccess()
	}

	var result WebSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "brave: unmarshal response")
	}

	return &result, nil
}
