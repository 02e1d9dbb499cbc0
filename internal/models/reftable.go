package models

import "strings"

// RefRow is one row of a reference table, keyed by header name.
type RefRow map[string]string

// Get returns a trimmed cell value by header name, tolerating case
// differences in the header. Reference sheets are hand-maintained, so exact
// header casing cannot be relied on.
func (r RefRow) Get(column string) string {
	if v, ok := r[column]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range r {
		if strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(column)) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// RefTable is a reference table whose header row is already known (piping
// class master, material code map, weight master). The linelist sheet is NOT
// a RefTable: its header row has to be detected first, so it enters the
// system as a raw cell grid.
type RefTable struct {
	Columns []string `json:"columns"`
	Rows    []RefRow `json:"rows"`
}

// HasColumn reports whether the table carries a column, case-insensitively.
func (t *RefTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(column)) {
			return true
		}
	}
	return false
}
