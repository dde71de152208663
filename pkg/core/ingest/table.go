package ingest

import "strings"

// RawTable is an uninterpreted tabular input: a header row plus data rows,
// all cells as trimmed strings. Both the workbook reader and the markdown
// extraction path produce this shape; the normalizer gives it meaning.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the position of a header by exact (trimmed) name, or
// -1 when absent.
func (t *RawTable) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col), tolerating short rows. Ledger exports
// routinely omit trailing empty cells.
func (t *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// Rename rewrites headers through a mapping of original name to canonical
// name, leaving unmapped headers untouched.
func (t *RawTable) Rename(mapping map[string]string) {
	for i, h := range t.Headers {
		if canonical, ok := mapping[strings.TrimSpace(h)]; ok {
			t.Headers[i] = canonical
		}
	}
}
