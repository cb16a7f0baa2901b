package repository

import (
	"fmt"
	"io"

	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ParseSnapshotsXLSX reads snapshot rows from the first sheet of a workbook.
// The first row is the header, with the same columns as the CSV format.
func ParseSnapshotsXLSX(r io.Reader) ([]domain.SKUSnapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to read XLSX header: sheet %s is empty", sheets[0])
	}

	i := 1
	next := func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	}

	return parseTable(rows[0], next)
}
