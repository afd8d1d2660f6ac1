package tabular

import "strings"

// Serialize writes a table as comma-delimited text.
func Serialize(t *Table) string {
	return SerializeWithDelimiter(t, DefaultDelimiter)
}

// SerializeWithDelimiter writes a table as delimited text, one line per row,
// joined with "\n". Cells holding the delimiter, a quote or a newline are
// quoted with inner quotes doubled.
func SerializeWithDelimiter(t *Table, delimiter rune) string {
	sep := string(delimiter)

	lines := make([]string, 0, len(t.Rows)+1)

	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = quoteCell(h, sep)
	}
	lines = append(lines, strings.Join(headers, sep))

	for _, row := range t.Rows {
		cells := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			cells[i] = quoteCell(row[h], sep)
		}
		lines = append(lines, strings.Join(cells, sep))
	}

	return strings.Join(lines, "\n")
}

// SerializeMulti writes every dataset and separates them with a blank line,
// the inverse of SplitAndParse.
func SerializeMulti(set *MultiTableSet) string {
	return SerializeMultiWithDelimiter(set, DefaultDelimiter)
}

// SerializeMultiWithDelimiter is SerializeMulti with a custom delimiter.
func SerializeMultiWithDelimiter(set *MultiTableSet, delimiter rune) string {
	if set == nil {
		return ""
	}
	parts := make([]string, 0, len(set.Datasets))
	for _, t := range set.Datasets {
		parts = append(parts, SerializeWithDelimiter(t, delimiter))
	}
	return strings.Join(parts, "\n\n")
}

func quoteCell(value, sep string) string {
	if strings.Contains(value, sep) || strings.Contains(value, `"`) || strings.Contains(value, "\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}
