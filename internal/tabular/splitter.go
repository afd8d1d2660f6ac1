package tabular

import (
	"fmt"
	"log"
	"strings"
)

// DetectMultiple reports whether comma-delimited text holds more than one
// dataset.
func DetectMultiple(text string) bool {
	return DetectMultipleWithDelimiter(text, DefaultDelimiter)
}

// DetectMultipleWithDelimiter reports whether a separator line (blank, or with
// only blank cells) sits between two non-blank lines. Trailing blank lines do
// not count.
func DetectMultipleWithDelimiter(text string, delimiter rune) bool {
	seenContent := false
	pendingSeparator := false

	for _, line := range splitLines(text) {
		if isSeparatorLine(line, delimiter) {
			if seenContent {
				pendingSeparator = true
			}
			continue
		}
		if pendingSeparator {
			return true
		}
		seenContent = true
	}

	return false
}

// SplitAndParse splits comma-delimited text on separator lines and parses
// every segment as its own table.
func SplitAndParse(text string) (*MultiTableSet, error) {
	return SplitAndParseWithDelimiter(text, DefaultDelimiter)
}

// SplitAndParseWithDelimiter splits text on separator lines and parses each
// segment. A segment that fails to parse is logged and skipped.
func SplitAndParseWithDelimiter(text string, delimiter rune) (*MultiTableSet, error) {
	lines := splitLines(text)

	var separators []int
	hasContent := false
	for i, line := range lines {
		if isSeparatorLine(line, delimiter) {
			separators = append(separators, i)
		} else {
			hasContent = true
		}
	}
	if !hasContent {
		return nil, ErrEmptyInput
	}

	set := &MultiTableSet{}
	var lastErr error
	start := 0
	bounds := append(separators, len(lines))

	for _, end := range bounds {
		segment := lines[start:end]
		segmentStart := start
		start = end + 1

		if len(segment) == 0 {
			continue
		}

		table, err := ParseWithDelimiter(strings.Join(segment, "\n"), delimiter)
		if err != nil {
			log.Printf("Tabular: skipping dataset at line %d: %v", segmentStart+1, err)
			lastErr = err
			continue
		}
		set.Datasets = append(set.Datasets, table)
	}

	if len(set.Datasets) == 0 {
		return nil, fmt.Errorf("no dataset could be parsed: %w", lastErr)
	}

	return set, nil
}

// isSeparatorLine reports whether a line is blank or has only blank cells.
func isSeparatorLine(line string, delimiter rune) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	for _, cell := range strings.Split(line, string(delimiter)) {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseDatasets parses text holding one or more comma-delimited datasets.
// A single dataset is parsed strictly so its errors are reported as is.
func ParseDatasets(text string) (*MultiTableSet, error) {
	if DetectMultiple(text) {
		return SplitAndParse(text)
	}
	table, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return &MultiTableSet{Datasets: []*Table{table}}, nil
}
