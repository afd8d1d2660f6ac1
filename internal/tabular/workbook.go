package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook converts an XLSX workbook into one dataset per non-empty sheet.
// The first non-blank row of a sheet is its header line.
func ReadWorkbook(r io.Reader) (*MultiTableSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	set := &MultiTableSet{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		table := tableFromCells(rows)
		if table == nil {
			continue
		}
		set.Datasets = append(set.Datasets, table)
	}

	if len(set.Datasets) == 0 {
		return nil, ErrEmptyInput
	}
	return set, nil
}

// Line breaks inside a cell become spaces: serialized tables are line based.
var cellLineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// tableFromCells trims cells, drops blank rows and uses the first remaining
// row as headers. Returns nil when nothing is left.
func tableFromCells(rows [][]string) *Table {
	var records [][]string
	for _, row := range rows {
		record := make([]string, len(row))
		blank := true
		for i, cell := range row {
			record[i] = strings.TrimSpace(cellLineBreaks.Replace(cell))
			if record[i] != "" {
				blank = false
			}
		}
		if !blank {
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return nil
	}
	return NewTable(records[0], records[1:])
}
