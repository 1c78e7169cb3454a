// Package spreadsheet reads tabular uploads and maps their header row onto
// canonical fields through an alias table.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Field names a canonical column.
type Field string

// AliasTable lists acceptable header variants per field. Exact matches win;
// otherwise the first header containing a variant is used.
type AliasTable map[Field][]string

// Sheet is a decoded worksheet.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadFirstSheet decodes the first worksheet of an xlsx workbook.
func ReadFirstSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(0)
	if name == "" {
		name = "Sheet1"
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	sheet := &Sheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}
	sheet.Header = rows[0]
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// Resolve maps each field to a column index of header. Fields without a
// matching column are absent from the result.
func (t AliasTable) Resolve(header []string) map[Field]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalize(h)
	}
	out := make(map[Field]int, len(t))
	for field, aliases := range t {
		if idx, ok := exactMatch(normalized, aliases); ok {
			out[field] = idx
			continue
		}
		if idx, ok := partialMatch(normalized, aliases); ok {
			out[field] = idx
		}
	}
	return out
}

// Records turns the rows into field maps using a resolved column index.
func (s *Sheet) Records(columns map[Field]int) []map[Field]string {
	out := make([]map[Field]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		rec := make(map[Field]string, len(columns))
		for field, idx := range columns {
			if idx < len(row) {
				rec[field] = strings.TrimSpace(row[idx])
			}
		}
		out = append(out, rec)
	}
	return out
}

func exactMatch(header []string, aliases []string) (int, bool) {
	for _, alias := range aliases {
		a := normalize(alias)
		for i, h := range header {
			if h == a {
				return i, true
			}
		}
	}
	return 0, false
}

func partialMatch(header []string, aliases []string) (int, bool) {
	for _, alias := range aliases {
		a := normalize(alias)
		if a == "" {
			continue
		}
		for i, h := range header {
			if strings.Contains(h, a) {
				return i, true
			}
		}
	}
	return 0, false
}

func normalize(v string) string {
	return strings.ToLower(strings.Join(strings.Fields(v), " "))
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
