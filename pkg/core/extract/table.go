// Package extract wraps the LLM extraction services (invoice table,
// claimed total, column mapping) and parses their output into RawTables.
// Model output is always parsed strictly; it is never evaluated as code.
package extract

import (
	"fmt"
	"strings"

	"vendor_recon/pkg/core/ingest"
)

// canonicalHeader is the exact header row the table extractor is
// instructed to emit.
var canonicalHeader = []string{"Date", "Invoice Number", "Amount", "Remaining Amount"}

// ParseMarkdownTable parses a markdown pipe table into a RawTable. Lines
// that are not pipe-delimited rows are skipped rather than rejected, since
// models occasionally wrap the table in commentary despite instructions.
// The header row must match the canonical four columns exactly.
func ParseMarkdownTable(text string) (*ingest.RawTable, error) {
	var tbl *ingest.RawTable
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
			continue
		}
		if strings.Contains(line, "---") {
			continue // separator row
		}

		cells := splitPipeRow(line)
		if tbl == nil {
			if !headerMatches(cells) {
				return nil, fmt.Errorf("unexpected table header %v, want %v", cells, canonicalHeader)
			}
			tbl = &ingest.RawTable{Headers: cells}
			continue
		}
		if len(cells) != len(tbl.Headers) {
			fmt.Printf("[extract] skipping malformed table row: %q\n", line)
			continue
		}
		tbl.Rows = append(tbl.Rows, cells)
	}

	if tbl == nil {
		return nil, fmt.Errorf("no markdown table found in extraction output")
	}
	return tbl, nil
}

func splitPipeRow(line string) []string {
	trimmed := strings.Trim(line, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func headerMatches(cells []string) bool {
	if len(cells) != len(canonicalHeader) {
		return false
	}
	for i, want := range canonicalHeader {
		if cells[i] != want {
			return false
		}
	}
	return true
}
