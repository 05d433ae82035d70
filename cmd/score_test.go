package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/homepage-finder/internal/fuzzy"
	"github.com/sells-group/homepage-finder/internal/lists"
	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/scorer"
)

func TestScoreHitsFor(t *testing.T) {
	sc, err := scorer.New(scorer.DefaultScoringConfig(), lists.Defaults(), nil, nil,
		scorer.WithMatcher(fuzzy.NewMatcher(noTransliterate)))
	require.NoError(t, err)

	resp := scoreHitsFor(context.Background(), sc, scoreRequest{
		Company: model.CompanyRecord{ID: "1", CompanyName: "Barber Boss", Prefecture: "東京都"},
		Hits: []model.SearchHit{
			{URL: "https://beauty.hotpepper.jp/slnH0001/", Title: "Barber Boss", Rank: 1},
			{URL: "https://barberboss.co.jp/", Title: "Barber Boss official site", Rank: 2},
		},
	})

	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, "https://barberboss.co.jp/", resp.Candidates[0].URL)
	assert.Equal(t, "basic", resp.Candidates[0].QueryLabel)
	require.NotNil(t, resp.Best)
	assert.Equal(t, resp.Candidates[0].URL, resp.Best.URL)

	empty := scoreHitsFor(context.Background(), sc, scoreRequest{Company: model.CompanyRecord{CompanyName: "x"}})
	assert.Nil(t, empty.Best)
	assert.Empty(t, empty.Candidates)
}

func TestReadJSONFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "company.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"id":"1","company_name":"Barber Boss","prefecture":"東京都"}`), 0o644))

	var c model.CompanyRecord
	require.NoError(t, readJSONFile(good, &c))
	assert.Equal(t, "Barber Boss", c.CompanyName)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[`), 0o644))
	assert.ErrorContains(t, readJSONFile(bad, &c), "parse")
	assert.ErrorContains(t, readJSONFile(filepath.Join(dir, "missing.json"), &c), "read")
}

func TestFormatCandidates(t *testing.T) {
	var buf bytes.Buffer
	formatCandidates(&buf, []model.ScoredCandidate{
		{URL: "https://barberboss.co.jp/", Rank: 1, TotalScore: 20, Judgment: model.JudgmentAutoAdopt, DomainSimilarity: 100},
	})
	out := buf.String()
	assert.Contains(t, out, "JUDGMENT")
	assert.Contains(t, out, "auto-adopt")
	assert.Contains(t, out, "https://barberboss.co.jp/")
}
