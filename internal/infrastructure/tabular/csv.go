// Package tabular reads trade exports (CSV or XLSX) into domain tables.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vitos/trade_journal/internal/domain"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV parses CSV with a header row. A UTF-8 or UTF-16 byte order mark is
// honored, cells are trimmed, blank lines are skipped and short rows leave
// their trailing columns empty.
func ReadCSV(r io.Reader) (*domain.Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return fromRows(rows), nil
}

// fromRows treats rows[0] as the header. Rows whose cells are all blank are
// dropped.
func fromRows(rows [][]string) *domain.Table {
	table := &domain.Table{
		Columns: []string{},
		Records: []map[string]string{},
	}
	if len(rows) == 0 {
		return table
	}

	for _, h := range rows[0] {
		table.Columns = append(table.Columns, strings.TrimSpace(h))
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(map[string]string, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			} else {
				rec[col] = ""
			}
		}
		table.Records = append(table.Records, rec)
	}
	return table
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
