package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/pkg/brave"
)

// Searcher runs the generated queries for a company against Brave.
type Searcher struct {
	client brave.Client
	gen    *Generator
	count  int
}

// NewSearcher creates a Searcher returning up to count results per query.
func NewSearcher(client brave.Client, gen *Generator, count int) *Searcher {
	return &Searcher{client: client, gen: gen, count: count}
}

// Search returns one batch per query in generation order. A failed query is
// logged and skipped; an error is returned only when every query failed.
func (s *Searcher) Search(ctx context.Context, c model.CompanyRecord) ([]model.HitBatch, error) {
	queries := s.gen.Queries(c)
	batches := make([]model.HitBatch, 0, len(queries))

	var lastErr error
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return batches, eris.Wrap(err, "search: cancelled")
		}

		resp, err := s.client.WebSearch(ctx, q.Text, s.count)
		if err != nil {
			lastErr = err
			zap.L().Warn("search: query failed",
				zap.String("company_id", c.ID),
				zap.String("query", q.Label),
				zap.Error(err),
			)
			continue
		}

		batches = append(batches, model.HitBatch{
			QueryLabel: q.Label,
			Query:      q.Text,
			Hits:       ToHits(resp.Web.Results),
		})
	}

	if len(batches) == 0 && lastErr != nil {
		return nil, eris.Wrapf(lastErr, "search: all %d queries failed", len(queries))
	}
	return batches, nil
}

// ToHits converts API results to hits. Rank is the 1-based position in the
// response; results without an http(s) URL are dropped without renumbering.
func ToHits(results []brave.WebResult) []model.SearchHit {
	hits := make([]model.SearchHit, 0, len(results))
	for i, r := range results {
		u, err := url.Parse(strings.TrimSpace(r.URL))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		hits = append(hits, model.SearchHit{
			URL:         u.String(),
			Title:       cleanSnippet(r.Title),
			Description: cleanSnippet(r.Description),
			Rank:        i + 1,
		})
	}
	return hits
}

// cleanSnippet drops the highlight markup the API puts in titles and
// descriptions and unescapes entities.
func cleanSnippet(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
