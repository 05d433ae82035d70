package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/homepage-finder/internal/finder"
	"github.com/sells-group/homepage-finder/internal/fuzzy"
	"github.com/sells-group/homepage-finder/internal/lists"
	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/scorer"
)

func noTransliterate(string) string { return "" }

type stubSearcher struct {
	batches []model.HitBatch
}

func (s stubSearcher) Search(context.Context, model.CompanyRecord) ([]model.HitBatch, error) {
	return s.batches, nil
}

var officialHits = []model.SearchHit{
	{URL: "https://barberboss.co.jp/", Title: "Barber Boss official site", Rank: 1},
	{URL: "https://jp.indeed.com/cmp/barber-boss", Title: "Barber Boss 求人", Rank: 2},
}

func newTestAPI(t *testing.T, withFinder bool) *apiServer {
	t.Helper()
	matcher := fuzzy.NewMatcher(noTransliterate)
	api := &apiServer{
		newScorer: func() (*scorer.Scorer, error) {
			return scorer.New(scorer.DefaultScoringConfig(), lists.Defaults(), nil, nil, scorer.WithMatcher(matcher))
		},
	}
	if withFinder {
		f, err := finder.New(finder.Deps{
			Search:  stubSearcher{batches: []model.HitBatch{{QueryLabel: "official", Hits: officialHits}}},
			Matcher: matcher,
		}, scorer.DefaultScoringConfig(), lists.Defaults(), finder.Options{})
		require.NoError(t, err)
		api.finder = f
	}
	return api
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	h := newRouter(newTestAPI(t, false), []string{"*"})

	rr := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["search"])
}

func TestScoreEndpoint(t *testing.T) {
	h := newRouter(newTestAPI(t, false), []string{"*"})

	rr := doJSON(t, h, http.MethodPost, "/v1/score", scoreRequest{
		Company:    model.CompanyRecord{ID: "1", CompanyName: "Barber Boss", Prefecture: "東京都"},
		QueryLabel: "official",
		Hits:       officialHits,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Best)
	assert.Equal(t, "https://barberboss.co.jp/", resp.Best.URL)
	assert.Equal(t, model.JudgmentAutoAdopt, resp.Best.Judgment)
	assert.Len(t, resp.Candidates, 1)
	require.Len(t, resp.Excluded, 1)
	assert.Equal(t, scorer.ReasonBlacklisted, resp.Excluded[0].Reason)
}

func TestScoreEndpoint_BadRequests(t *testing.T) {
	h := newRouter(newTestAPI(t, false), []string{"*"})

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")

	rr = doJSON(t, h, http.MethodPost, "/v1/score", scoreRequest{Hits: officialHits})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "company_name is required")
}

func TestFindEndpoint(t *testing.T) {
	h := newRouter(newTestAPI(t, true), []string{"*"})

	rr := doJSON(t, h, http.MethodPost, "/v1/find", map[string]any{
		"company": model.CompanyRecord{ID: "1", CompanyName: "Barber Boss", Prefecture: "東京都"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out finder.Outcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "https://barberboss.co.jp/", out.Result.URL)
	assert.Equal(t, "official", out.Result.QueryLabel)
	assert.Equal(t, string(model.JudgmentAutoAdopt), out.Result.Status)
}

func TestFindEndpoint_Disabled(t *testing.T) {
	h := newRouter(newTestAPI(t, false), []string{"*"})

	rr := doJSON(t, h, http.MethodPost, "/v1/find", map[string]any{
		"company": model.CompanyRecord{CompanyName: "Barber Boss"},
	})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newRouter(newTestAPI(t, false), []string{"*"})

	rr := doJSON(t, h, http.MethodGet, "/v1/score", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newRouter(newTestAPI(t, false), []string{"https://app.example.jp"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/score", nil)
	req.Header.Set("Origin", "https://app.example.jp")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.jp", rr.Header().Get("Access-Control-Allow-Origin"))
}
