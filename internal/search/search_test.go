package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/pkg/brave"
	"github.com/sells-group/homepage-finder/pkg/brave/mocks"
)

var boss = model.CompanyRecord{ID: "7", CompanyName: "Barber Boss", Prefecture: "東京都", Industry: "理容"}

func TestSearch_AllQueries(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("WebSearch", mock.Anything, "Barber Boss 東京都 理容", 10).Return(&brave.WebSearchResponse{
		Web: brave.WebResults{Results: []brave.WebResult{
			{Title: "<strong>Barber Boss</strong> &amp; Co", URL: "https://barberboss.co.jp/"},
			{Title: "mail", URL: "mailto:info@barberboss.co.jp"},
			{Title: "shop", URL: "https://beauty.hotpepper.jp/slnH0001/"},
		}},
	}, nil).Once()
	client.On("WebSearch", mock.Anything, "Barber Boss 公式サイト", 10).Return(&brave.WebSearchResponse{}, nil).Once()

	s := NewSearcher(client, NewGenerator([]string{"basic", "official"}, nil), 10)
	batches, err := s.Search(context.Background(), boss)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	assert.Equal(t, "basic", batches[0].QueryLabel)
	require.Len(t, batches[0].Hits, 2)
	assert.Equal(t, model.SearchHit{URL: "https://barberboss.co.jp/", Title: "Barber Boss & Co", Rank: 1}, batches[0].Hits[0])
	assert.Equal(t, 3, batches[0].Hits[1].Rank, "dropped results keep their positions")

	assert.Equal(t, "official", batches[1].QueryLabel)
	assert.Empty(t, batches[1].Hits)
}

func TestSearch_PartialFailure(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("WebSearch", mock.Anything, "Barber Boss 東京都 理容", 5).Return(nil, errors.New("brave: unexpected status 500")).Once()
	client.On("WebSearch", mock.Anything, "Barber Boss 公式サイト", 5).Return(&brave.WebSearchResponse{
		Web: brave.WebResults{Results: []brave.WebResult{{URL: "https://barberboss.co.jp/"}}},
	}, nil).Once()

	s := NewSearcher(client, NewGenerator([]string{"basic", "official"}, nil), 5)
	batches, err := s.Search(context.Background(), boss)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "official", batches[0].QueryLabel)
}

func TestSearch_AllFail(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("WebSearch", mock.Anything, mock.Anything, 5).Return(nil, errors.New("down"))

	s := NewSearcher(client, NewGenerator([]string{"basic", "official"}, nil), 5)
	batches, err := s.Search(context.Background(), boss)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 queries failed")
	assert.Nil(t, batches)
}

func TestSearch_Cancelled(t *testing.T) {
	client := mocks.NewMockClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSearcher(client, NewGenerator(nil, nil), 5)
	_, err := s.Search(ctx, boss)
	assert.Error(t, err)
}

func TestToHits(t *testing.T) {
	hits := ToHits([]brave.WebResult{
		{URL: " https://a.jp/ "},
		{URL: "ftp://files.a.jp/"},
		{URL: "::not a url"},
		{URL: "http://b.jp/path?q=1", Description: "x &lt; y"},
	})
	require.Len(t, hits, 2)
	assert.Equal(t, "https://a.jp/", hits[0].URL)
	assert.Equal(t, 1, hits[0].Rank)
	assert.Equal(t, "http://b.jp/path?q=1", hits[1].URL)
	assert.Equal(t, 4, hits[1].Rank)
	assert.Equal(t, "x < y", hits[1].Description)
}
