package sheet

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/japanese"

	"github.com/sells-group/homepage-finder/internal/model"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

var companiesSheet = map[string][][]string{
	"companies": {
		{"id", "prefecture", "industry", "company_name"},
		{"1", "東京都", "美容室", "Barber Boss"},
		{"", "大阪", "飲食", "株式会社たこ焼き本舗"},
		{"3", "北海道", "", ""},
		{"4", "Kyoto", "旅館", " 京都旅館 "},
	},
}

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"A", 0},
		{"d", 3},
		{"Z", 25},
		{"AA", 26},
		{"AB", 27},
	}
	for _, tt := range tests {
		got, err := ColumnIndex(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ColumnIndex("")
	assert.Error(t, err)
	_, err = ColumnIndex("A1")
	assert.Error(t, err)
}

func TestReadCompaniesXLSX(t *testing.T) {
	path := createTestXLSX(t, companiesSheet)

	got, err := ReadCompaniesXLSX(path, XLSXOptions{SheetName: "companies"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, model.CompanyRecord{ID: "1", CompanyName: "Barber Boss", Prefecture: "東京都", Industry: "美容室"}, got[0])
	assert.Equal(t, "row-3", got[1].ID)
	assert.Equal(t, "株式会社たこ焼き本舗", got[1].CompanyName)
	assert.Equal(t, "京都旅館", got[2].CompanyName)
}

func TestReadCompaniesXLSX_CustomLayout(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"data": {
			{"title row"},
			{"name", "code"},
			{"Octo Hair", "X9"},
		},
	})

	got, err := ReadCompaniesXLSX(path, XLSXOptions{Layout: Layout{
		StartRow:      3,
		IDCol:         "B",
		PrefectureCol: "C",
		IndustryCol:   "D",
		NameCol:       "A",
		OutputCol:     "E",
	}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X9", got[0].ID)
	assert.Equal(t, "Octo Hair", got[0].CompanyName)
	assert.Empty(t, got[0].Prefecture)
}

func TestReadCompaniesXLSX_Errors(t *testing.T) {
	path := createTestXLSX(t, companiesSheet)

	_, err := ReadCompaniesXLSX(path, XLSXOptions{SheetName: "missing"})
	assert.ErrorContains(t, err, "not found")

	_, err = ReadCompaniesXLSX(path, XLSXOptions{SheetIndex: 5})
	assert.ErrorContains(t, err, "out of range")

	_, err = ReadCompaniesXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)

	bad := DefaultLayout()
	bad.NameCol = "1"
	_, err = ReadCompaniesXLSX(path, XLSXOptions{Layout: bad})
	assert.ErrorContains(t, err, "invalid column")
}

func TestAnnotateXLSX(t *testing.T) {
	in := createTestXLSX(t, companiesSheet)
	out := filepath.Join(t.TempDir(), "out.xlsx")
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	results := []model.Result{
		{CompanyID: "1", URL: "https://barberboss.co.jp/", Score: 20, Status: string(model.JudgmentAutoAdopt), QueryLabel: "official", ProcessedAt: at},
		{CompanyID: "row-3", Status: model.StatusNoCandidates, ProcessedAt: at},
	}
	require.NoError(t, AnnotateXLSX(in, out, XLSXOptions{SheetName: "companies"}, results))

	f, err := xlsx.OpenFile(out)
	require.NoError(t, err)
	sheet := f.Sheet["companies"]
	require.NotNil(t, sheet)

	header := rowToStrings(sheet.Rows[0])
	assert.Equal(t, OutputHeaders, header[4:9])

	first := rowToStrings(sheet.Rows[1])
	assert.Equal(t, []string{"https://barberboss.co.jp/", "20", "auto-adopt", "official", "2026-04-01T09:00:00Z"}, first[4:9])

	second := rowToStrings(sheet.Rows[2])
	assert.Equal(t, model.StatusNoCandidates, second[6])

	// Company 4 had no result.
	assert.Empty(t, cellAt(rowToStrings(sheet.Rows[4]), 4))
}

func TestWriteResultsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, WriteResultsXLSX(path, []model.Result{
		{CompanyID: "1", CompanyName: "Barber Boss", Prefecture: "東京都", URL: "https://barberboss.co.jp/", Score: 20, Status: "auto-adopt", ProcessedAt: at},
	}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet := f.Sheet["results"]
	require.NotNil(t, sheet)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "company_name", rowToStrings(sheet.Rows[0])[1])
	row := rowToStrings(sheet.Rows[1])
	assert.Equal(t, "Barber Boss", row[1])
	assert.Equal(t, "https://barberboss.co.jp/", row[4])
	assert.Equal(t, "20", row[5])
}

func TestReadCompaniesCSV(t *testing.T) {
	in := "\ufeffid,company_name,prefecture,industry,memo\n" +
		"1,Barber Boss,東京都,美容室,x\n" +
		",  株式会社たこ焼き本舗 ,大阪,飲食,\n" +
		"3,,北海道,,\n"

	got, err := ReadCompaniesCSV(strings.NewReader(in), "utf-8")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "Barber Boss", got[0].CompanyName)
	assert.Equal(t, "row-3", got[1].ID)
	assert.Equal(t, "株式会社たこ焼き本舗", got[1].CompanyName)
}

func TestReadCompaniesCSV_ShiftJIS(t *testing.T) {
	raw, err := japanese.ShiftJIS.NewEncoder().String("id,company_name,prefecture,industry\n7,京都旅館,京都府,旅館\n")
	require.NoError(t, err)

	got, err := ReadCompaniesCSV(strings.NewReader(raw), "shift_jis")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "京都旅館", got[0].CompanyName)
	assert.Equal(t, "京都府", got[0].Prefecture)
}

func TestReadCompaniesCSV_Edges(t *testing.T) {
	got, err := ReadCompaniesCSV(strings.NewReader(""), "")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadCompaniesCSV(strings.NewReader("id\n"), "klingon")
	assert.ErrorContains(t, err, "unknown encoding")
}

func TestWriteResultsCSV(t *testing.T) {
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer

	require.NoError(t, WriteResultsCSV(&buf, []model.Result{
		{RunID: "r1", CompanyID: "1", CompanyName: "Barber Boss", URL: "https://barberboss.co.jp/", Score: 20, Status: "auto-adopt", QueryLabel: "official", CandidateCount: 3, ProcessedAt: at},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,company_name,prefecture,industry,url,score,status,query,domain_similarity,candidates,timestamp", lines[0])
	assert.Equal(t, "1,Barber Boss,,,https://barberboss.co.jp/,20,auto-adopt,official,0,3,2026-04-01T09:00:00Z", lines[1])
}

func TestWriteResultsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "id,company_name,"))
}
