package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/homepage-finder/internal/model"
)

func TestQueries_Defaults(t *testing.T) {
	g := NewGenerator(nil, nil)

	qs := g.Queries(model.CompanyRecord{
		CompanyName: "株式会社バーバーボス【本店】",
		Prefecture:  "Tokyo",
		Industry:    "理容",
	})
	require.Len(t, qs, 3)
	assert.Equal(t, Query{Label: PatternBasic, Text: "株式会社バーバーボス 東京都 理容"}, qs[0])
	assert.Equal(t, Query{Label: PatternOfficial, Text: "株式会社バーバーボス 公式サイト"}, qs[1])
	assert.Equal(t, Query{Label: PatternDomain, Text: `"株式会社バーバーボス" site:.co.jp OR site:.com`}, qs[2])
}

func TestQueries_MissingFieldsCollapse(t *testing.T) {
	g := NewGenerator([]string{"basic", "location"}, nil)

	qs := g.Queries(model.CompanyRecord{CompanyName: "Barber Boss"})
	require.Len(t, qs, 2)
	assert.Equal(t, "Barber Boss", qs[0].Text)
	assert.Equal(t, "Barber Boss 公式", qs[1].Text)
}

func TestQueries_UnknownPrefectureKeptVerbatim(t *testing.T) {
	g := NewGenerator([]string{"basic"}, nil)

	qs := g.Queries(model.CompanyRecord{CompanyName: "Boss", Prefecture: "Kanto"})
	require.Len(t, qs, 1)
	assert.Equal(t, "Boss Kanto", qs[0].Text)
}

func TestQueries_CustomTemplates(t *testing.T) {
	g := NewGenerator([]string{"official", "Shop", "missing"}, map[string]string{
		"shop":     "{company_name} 店舗 {prefecture}",
		"official": "{company_name} オフィシャル",
	})

	qs := g.Queries(model.CompanyRecord{CompanyName: "Boss", Prefecture: "大阪"})
	require.Len(t, qs, 2)
	assert.Equal(t, Query{Label: "official", Text: "Boss オフィシャル"}, qs[0])
	assert.Equal(t, Query{Label: "shop", Text: "Boss 店舗 大阪府"}, qs[1])
}

func TestQueries_EmptyName(t *testing.T) {
	g := NewGenerator(nil, nil)
	assert.Empty(t, g.Queries(model.CompanyRecord{CompanyName: "  "}))
}
