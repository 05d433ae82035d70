package sheet

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/model"
)

// XLSXOptions selects the worksheet and layout.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	Layout     Layout
}

func (o XLSXOptions) layout() Layout {
	if o.Layout == (Layout{}) {
		return DefaultLayout()
	}
	return o.Layout
}

// ReadCompaniesXLSX reads company records from an XLSX file. Rows without a
// company name are skipped; rows without an id get "row-N".
func ReadCompaniesXLSX(path string, opts XLSXOptions) ([]model.CompanyRecord, error) {
	cols, err := opts.layout().resolve()
	if err != nil {
		return nil, err
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var companies []model.CompanyRecord
	for i := opts.layout().StartRow - 1; i < len(sheet.Rows); i++ {
		cells := rowToStrings(sheet.Rows[i])
		name := cellAt(cells, cols.name)
		if name == "" {
			continue
		}
		companies = append(companies, model.CompanyRecord{
			ID:          rowID(cells, cols, i),
			CompanyName: name,
			Prefecture:  cellAt(cells, cols.prefecture),
			Industry:    cellAt(cells, cols.industry),
		})
	}

	zap.L().Info("sheet: read companies", zap.String("path", path), zap.Int("count", len(companies)))
	return companies, nil
}

// AnnotateXLSX copies the workbook at inPath to outPath with each company's
// result written into the output columns of its row. Rows without a result
// are left untouched.
func AnnotateXLSX(inPath, outPath string, opts XLSXOptions, results []model.Result) error {
	layout := opts.layout()
	cols, err := layout.resolve()
	if err != nil {
		return err
	}

	f, err := xlsx.OpenFile(inPath)
	if err != nil {
		return eris.Wrap(err, "xlsx: open file")
	}
	sheet, err := getSheet(f, opts)
	if err != nil {
		return err
	}

	byID := make(map[string]model.Result, len(results))
	for _, r := range results {
		byID[r.CompanyID] = r
	}

	if header := layout.StartRow - 2; header >= 0 {
		for j, h := range OutputHeaders {
			if c := sheet.Cell(header, cols.output+j); c.String() == "" {
				c.SetString(h)
			}
		}
	}

	written := 0
	for i := layout.StartRow - 1; i < len(sheet.Rows); i++ {
		cells := rowToStrings(sheet.Rows[i])
		if cellAt(cells, cols.name) == "" {
			continue
		}
		r, ok := byID[rowID(cells, cols, i)]
		if !ok {
			continue
		}
		writeResult(sheet, i, cols.output, r)
		written++
	}

	if err := f.Save(outPath); err != nil {
		return eris.Wrap(err, "xlsx: save file")
	}
	zap.L().Info("sheet: wrote results", zap.String("path", outPath), zap.Int("rows", written))
	return nil
}

// WriteResultsXLSX writes results to a new single-sheet workbook.
func WriteResultsXLSX(path string, results []model.Result) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("results")
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range append([]string{"id", "company_name", "prefecture", "industry"}, OutputHeaders...) {
		header.AddCell().SetString(h)
	}
	for i, r := range results {
		row := sheet.AddRow()
		for _, v := range []string{r.CompanyID, r.CompanyName, r.Prefecture, r.Industry} {
			row.AddCell().SetString(v)
		}
		writeResult(sheet, i+1, 4, r)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "xlsx: save file")
	}
	return nil
}

func writeResult(sheet *xlsx.Sheet, row, col int, r model.Result) {
	sheet.Cell(row, col).SetString(r.URL)
	sheet.Cell(row, col+1).SetInt(r.Score)
	sheet.Cell(row, col+2).SetString(r.Status)
	sheet.Cell(row, col+3).SetString(r.QueryLabel)
	sheet.Cell(row, col+4).SetString(r.ProcessedAt.Format(time.RFC3339))
}

func rowID(cells []string, cols columns, row int) string {
	if id := cellAt(cells, cols.id); id != "" {
		return id
	}
	return "row-" + strconv.Itoa(row+1)
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
