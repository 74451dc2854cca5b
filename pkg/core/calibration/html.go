package calibration

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseHTMLTables reads calibration tables exported as HTML:
//
//	<table data-category="Books" data-coefficient="95000" data-exponent="-0.7">
//	  <tr><th>BSR</th><th>Units / month</th></tr>
//	  <tr><td>100</td><td>4,200</td></tr>
//	</table>
//
// Tables without data-category are ignored. Header rows (th cells) are skipped.
func parseHTMLTables(data []byte) (map[string]RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	raw := make(map[string]RawRecord)
	var parseErr error

	doc.Find("table[data-category]").EachWithBreak(func(i int, table *goquery.Selection) bool {
		name := strings.TrimSpace(table.AttrOr("data-category", ""))
		if _, dup := raw[name]; dup {
			parseErr = fmt.Errorf("table #%d: duplicate category %q", i, name)
			return false
		}

		coefficient, err := parseNumber(table.AttrOr("data-coefficient", ""))
		if err != nil {
			parseErr = fmt.Errorf("table %q: data-coefficient: %w", name, err)
			return false
		}
		exponent, err := parseNumber(table.AttrOr("data-exponent", ""))
		if err != nil {
			parseErr = fmt.Errorf("table %q: data-exponent: %w", name, err)
			return false
		}

		rr := RawRecord{Coefficient: coefficient, Exponent: exponent}
		table.Find("tr").EachWithBreak(func(j int, row *goquery.Selection) bool {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return true
			}
			if cells.Length() < 2 {
				parseErr = fmt.Errorf("table %q row %d: expected rank and units cells", name, j)
				return false
			}
			rank, err := parseNumber(cells.Eq(0).Text())
			if err != nil {
				parseErr = fmt.Errorf("table %q row %d: rank: %w", name, j, err)
				return false
			}
			units, err := parseNumber(cells.Eq(1).Text())
			if err != nil {
				parseErr = fmt.Errorf("table %q row %d: units: %w", name, j, err)
				return false
			}
			rr.Data = append(rr.Data, []float64{rank, units})
			return true
		})
		if parseErr != nil {
			return false
		}

		raw[name] = rr
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no <table data-category> elements found")
	}
	return raw, nil
}

// parseNumber accepts "1,234.5" style values.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
