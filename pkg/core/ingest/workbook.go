// Package ingest reads tabular inputs (Excel workbooks, HTML ledger exports)
// into RawTable values for normalization.
package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbook loads the first sheet of an Excel file as a RawTable. The
// first non-empty row is taken as the header row.
//
// Some ERP systems export "Excel" files that are actually HTML tables with
// an .xls extension; those are detected by sniffing and routed through the
// HTML reader instead.
func ReadWorkbook(path string) (*RawTable, error) {
	if isHTMLFile(path) {
		fmt.Printf("[ingest] %s is an HTML export, using HTML table reader\n", path)
		return ReadHTMLTable(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return tableFromRows(rows, path)
}

// ReadHTMLTable parses the first <table> of an HTML document into a RawTable.
func ReadHTMLTable(path string) (*RawTable, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	doc, err := goquery.NewDocumentFromReader(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML in %s: %w", path, err)
	}

	var rows [][]string
	doc.Find("table").First().Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(j int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})

	return tableFromRows(rows, path)
}

func tableFromRows(rows [][]string, path string) (*RawTable, error) {
	// Skip leading fully-empty rows before the header.
	start := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("no data found in %s", path)
	}

	headers := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		headers[i] = strings.TrimSpace(h)
	}

	tbl := &RawTable{Headers: headers}
	for _, row := range rows[start+1:] {
		if rowEmpty(row) {
			continue
		}
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl, nil
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// isHTMLFile sniffs the leading bytes for an HTML document. xlsx files are
// zip archives, so anything starting with a tag is not a real workbook.
func isHTMLFile(path string) bool {
	fh, err := os.Open(path)
	if err != nil {
		return false
	}
	defer fh.Close()

	buf := make([]byte, 512)
	n, _ := fh.Read(buf)
	head := strings.ToLower(strings.TrimSpace(string(buf[:n])))
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.HasPrefix(head, "<table")
}
