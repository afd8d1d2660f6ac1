package tabular

import (
	"errors"
	"fmt"
	"strings"
)

var errUnterminatedQuote = errors.New("unterminated quoted field")

// Parse parses comma-delimited text into a Table.
func Parse(text string) (*Table, error) {
	return ParseWithDelimiter(text, DefaultDelimiter)
}

// ParseWithDelimiter parses delimited text into a Table.
//
// Lines are split on CR, LF or CRLF and blank lines are discarded. The first
// remaining line is the header line. A doubled quote inside a quoted field is
// read as a literal quote. Quoted fields cannot span lines.
func ParseWithDelimiter(text string, delimiter rune) (*Table, error) {
	var (
		matrix  [][]string
		lineNos []int
	)

	for i, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitFields(line, delimiter)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Msg: err.Error()}
		}
		matrix = append(matrix, fields)
		lineNos = append(lineNos, i+1)
	}

	if len(matrix) == 0 {
		return nil, ErrEmptyInput
	}

	headers := matrix[0]
	if dup := firstDuplicate(headers); dup != "" {
		return nil, &ParseError{Line: lineNos[0], Msg: fmt.Sprintf("duplicate header %q", dup)}
	}

	return NewTable(headers, matrix[1:]), nil
}

// splitLines splits on CRLF, LF and lone CR, keeping blank lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// splitFields scans one line, honouring quotes. Quote characters delimit
// fields and are not part of the value; "" inside quotes yields one quote.
func splitFields(line string, delimiter rune) ([]string, error) {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delimiter && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	if inQuotes {
		return nil, errUnterminatedQuote
	}

	fields = append(fields, strings.TrimSpace(current.String()))
	return fields, nil
}

// firstDuplicate returns the first non-empty header that appears twice.
func firstDuplicate(headers []string) string {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h == "" {
			continue
		}
		if seen[h] {
			return h
		}
		seen[h] = true
	}
	return ""
}
