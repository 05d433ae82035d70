// Package sheet reads company records from spreadsheets and writes result
// rows back.
package sheet

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Output column headers, in column order starting at Layout.OutputCol.
var OutputHeaders = []string{"url", "score", "status", "query", "timestamp"}

// Layout locates the input fields and the output block in a worksheet.
// Columns are spreadsheet letters; StartRow is the 1-based first data row.
type Layout struct {
	StartRow      int
	IDCol         string
	PrefectureCol string
	IndustryCol   string
	NameCol       string
	OutputCol     string
}

// DefaultLayout reads A=id, B=prefecture, C=industry, D=company name from
// row 2 and writes results to E through I.
func DefaultLayout() Layout {
	return Layout{
		StartRow:      2,
		IDCol:         "A",
		PrefectureCol: "B",
		IndustryCol:   "C",
		NameCol:       "D",
		OutputCol:     "E",
	}
}

type columns struct {
	id, prefecture, industry, name, output int
}

func (l Layout) resolve() (columns, error) {
	if l.StartRow < 1 {
		return columns{}, eris.Errorf("sheet: start row must be >= 1, got %d", l.StartRow)
	}
	var c columns
	var err error
	for _, f := range []struct {
		dst    *int
		letter string
	}{
		{&c.id, l.IDCol},
		{&c.prefecture, l.PrefectureCol},
		{&c.industry, l.IndustryCol},
		{&c.name, l.NameCol},
		{&c.output, l.OutputCol},
	} {
		if *f.dst, err = ColumnIndex(f.letter); err != nil {
			return columns{}, err
		}
	}
	return c, nil
}

// ColumnIndex converts a column letter such as "A" or "AB" to a 0-based index.
func ColumnIndex(letters string) (int, error) {
	letters = strings.ToUpper(strings.TrimSpace(letters))
	if letters == "" {
		return 0, eris.New("sheet: empty column")
	}
	idx := 0
	for _, r := range letters {
		if r < 'A' || r > 'Z' {
			return 0, eris.Errorf("sheet: invalid column %q", letters)
		}
		idx = idx*26 + int(r-'A'+1)
	}
	return idx - 1, nil
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
