package catalog

import (
	"strings"

	"mimiops/internal"
)

// FindExact returns the first row in table order whose column equals
// value, comparing both sides trimmed. Absence is not an error: the
// second return is false, including when the column itself does not
// exist.
func (t *Table) FindExact(col, value string) (Row, bool) {
	key := strings.TrimSpace(value)
	if key == "" {
		return nil, false
	}
	if t.exact != nil {
		byValue, ok := t.exact[col]
		if !ok {
			return nil, false
		}
		idx, ok := byValue[key]
		if !ok {
			return nil, false
		}
		return t.Rows[idx], true
	}
	for _, row := range t.Rows {
		if strings.TrimSpace(row.Get(col)) == key {
			return row, true
		}
	}
	return nil, false
}

// FindContains returns the rows whose column contains fragment
// case-insensitively, in table order. An empty fragment or an unknown
// column is a user input error, surfaced before any scan.
func (t *Table) FindContains(col, fragment string) ([]Row, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, internal.NewUserInputError("fragment", "must not be empty")
	}
	if !t.HasColumn(col) {
		return nil, internal.NewUserInputError("column", "unknown column "+col)
	}

	needle := strings.ToLower(fragment)
	out := []Row{}
	for _, row := range t.Rows {
		if strings.Contains(strings.ToLower(row.Get(col)), needle) {
			out = append(out, row)
		}
	}
	return out, nil
}
