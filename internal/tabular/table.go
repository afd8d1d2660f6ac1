// Package tabular turns delimited text into tables and back.
//
// # Overview
//
// A single blob of text may hold one table or several tables separated by
// blank lines (the way spreadsheet exports glue sheets together):
//
//	name,amount        <- dataset 1
//	Ada,100
//
//	city,zip           <- dataset 2
//	NY,10001
//
// Parse handles one table, SplitAndParse handles the multi-table case and
// Serialize / SerializeMulti are their inverses. ReadWorkbook converts an XLSX
// workbook into the same structures, one dataset per sheet.
package tabular

import (
	"errors"
	"fmt"
)

// DefaultDelimiter is the field separator used when none is given.
const DefaultDelimiter = ','

// ErrEmptyInput is returned when the text holds no non-blank line.
var ErrEmptyInput = errors.New("input is empty")

// ParseError describes malformed delimited text.
type ParseError struct {
	Line int // 1-based line number within the parsed text, 0 when unknown
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Row maps a header name to the cell value of one data line.
type Row map[string]string

// Table is the parsed result of one delimited-text block.
//
// Rows always has exactly len(RawMatrix)-1 entries and every row carries every
// header as a key. Tables are treated as immutable: Project and SelectRows
// return new tables.
type Table struct {
	Headers   []string   `json:"headers"`
	Rows      []Row      `json:"rows"`
	RawMatrix [][]string `json:"raw_matrix"`
}

// NewTable builds a table from a header line and data records.
// Cells beyond the header count are kept in RawMatrix but dropped from the row
// mappings; missing trailing cells become empty strings.
func NewTable(headers []string, records [][]string) *Table {
	t := &Table{
		Headers:   append([]string(nil), headers...),
		Rows:      make([]Row, 0, len(records)),
		RawMatrix: make([][]string, 0, len(records)+1),
	}
	t.RawMatrix = append(t.RawMatrix, append([]string(nil), headers...))

	for _, record := range records {
		t.RawMatrix = append(t.RawMatrix, append([]string(nil), record...))

		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}

// RowCount returns the number of data rows (the header line excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Sample returns up to n leading rows, for previews.
func (t *Table) Sample(n int) []Row {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// HasHeader reports whether name is one of the table's headers.
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Project returns a new table restricted to the given columns.
// Column order follows the original header order; unknown names are ignored.
func (t *Table) Project(columns []string) *Table {
	keep := make(map[string]bool, len(columns))
	for _, c := range columns {
		keep[c] = true
	}

	var headers []string
	for _, h := range t.Headers {
		if keep[h] {
			headers = append(headers, h)
		}
	}

	records := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = row[h]
		}
		records = append(records, record)
	}

	return NewTable(headers, records)
}

// SelectRows returns a new table holding only the rows at the given 0-based
// indexes, in the order given. Out-of-range indexes are skipped.
func (t *Table) SelectRows(indexes []int) *Table {
	records := make([][]string, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 0 || idx >= len(t.Rows) {
			continue
		}
		record := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			record[i] = t.Rows[idx][h]
		}
		records = append(records, record)
	}
	return NewTable(t.Headers, records)
}

// MultiTableSet is an ordered list of tables found in one text blob.
type MultiTableSet struct {
	Datasets []*Table `json:"datasets"`
}

// Len returns the number of datasets.
func (s *MultiTableSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Datasets)
}

// Dataset returns the dataset at index, or nil when out of range.
func (s *MultiTableSet) Dataset(index int) *Table {
	if s == nil || index < 0 || index >= len(s.Datasets) {
		return nil
	}
	return s.Datasets[index]
}
