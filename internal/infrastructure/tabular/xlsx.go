package tabular

import (
	"fmt"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of a workbook; its first row is the header.
func ReadXLSX(path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fromRows(nil), nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return fromRows(rows), nil
}
