package sheet

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/homepage-finder/internal/model"
)

// ReadCompaniesCSV reads company records from a CSV stream with a header row
// naming id, company_name, prefecture and industry. encoding is a WHATWG label
// such as "utf-8" or "shift_jis"; a leading byte order mark wins over it.
func ReadCompaniesCSV(r io.Reader, encoding string) ([]model.CompanyRecord, error) {
	if encoding == "" {
		encoding = "utf-8"
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: unknown encoding %q", encoding)
	}

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "csv: read header")
	}

	var companies []model.CompanyRecord
	for line := 2; ; line++ {
		var c model.CompanyRecord
		if err := dec.Decode(&c); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "csv: decode line %d", line)
		}
		c.CompanyName = strings.TrimSpace(c.CompanyName)
		if c.CompanyName == "" {
			continue
		}
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			c.ID = "row-" + strconv.Itoa(line)
		}
		c.Prefecture = strings.TrimSpace(c.Prefecture)
		c.Industry = strings.TrimSpace(c.Industry)
		companies = append(companies, c)
	}
	return companies, nil
}

// WriteResultsCSV writes results as UTF-8 CSV with a header row.
func WriteResultsCSV(w io.Writer, results []model.Result) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	var err error
	if len(results) == 0 {
		err = enc.EncodeHeader(model.Result{})
	} else {
		err = enc.Encode(results)
	}
	if err != nil {
		return eris.Wrap(err, "csv: encode results")
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "csv: flush")
	}
	return nil
}
