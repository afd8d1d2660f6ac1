package mapping

import (
	"strings"
)

// Mapping maps a target field id to a source column header. Unmapped fields
// are absent.
type Mapping map[string]string

// Clone returns an independent copy.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Set maps field to column; an empty column clears the field.
func (m Mapping) Set(field, column string) {
	if column == "" {
		delete(m, field)
		return
	}
	m[field] = column
}

// Clear removes the mapping for field.
func (m Mapping) Clear(field string) {
	delete(m, field)
}

// Column returns the source column mapped to field.
func (m Mapping) Column(field string) (string, bool) {
	col, ok := m[field]
	return col, ok && col != ""
}

var normalizer = strings.NewReplacer("_", "", " ", "", "-", "")

func normalize(s string) string {
	return normalizer.Replace(strings.ToLower(s))
}

// AutoMap pre-fills a mapping by comparing normalized header names with each
// field's id and label. A header matches when the forms are equal or one
// contains the other. Fields are visited in declaration order and take the
// first matching header; a header may serve several fields. Empty headers
// never match.
func AutoMap(headers []string, fields []TargetField) Mapping {
	m := make(Mapping)

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalize(h)
	}

	for _, field := range fields {
		id := normalize(field.ID)
		label := normalize(field.Label)

		for i, header := range normalized {
			if header == "" {
				continue
			}
			if similar(header, id) || similar(header, label) {
				m[field.ID] = headers[i]
				break
			}
		}
	}

	return m
}

func similar(header, key string) bool {
	if key == "" {
		return false
	}
	return header == key || strings.Contains(header, key) || strings.Contains(key, header)
}

// IsComplete reports whether every required field has a non-empty column.
func IsComplete(m Mapping, fields []TargetField) bool {
	return len(MissingRequired(m, fields)) == 0
}

// MissingRequired lists the required fields that are not mapped yet.
func MissingRequired(m Mapping, fields []TargetField) []TargetField {
	var missing []TargetField
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if _, ok := m.Column(f.ID); !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Unknown lists mapped fields whose source column is not among headers.
func Unknown(m Mapping, headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var unknown []string
	for field, col := range m {
		if col != "" && !present[col] {
			unknown = append(unknown, field)
		}
	}
	return unknown
}
