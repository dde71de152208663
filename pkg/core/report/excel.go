// Package report renders reconciliation results: a fixed-layout Excel
// workbook built from a template, and human-readable text sections for the
// caller to transmit as chat messages.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vendor_recon/pkg/models"
)

// Template layout constants. Existing templates depend on these exact
// coordinates; do not change them independently of the template file.
const (
	cellTotalBooked    = "D11"
	cellTotalNotBooked = "D14"
	sectionStartRow    = 15
	borderFromRow      = 14
)

// ReportError is a template or output I/O failure. The render is aborted
// and no partial file is published.
type ReportError struct {
	Stage string
	Err   error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report %s failed: %v", e.Stage, e.Err)
}

func (e *ReportError) Unwrap() error { return e.Err }

// Renderer populates a reconciliation template workbook.
type Renderer struct {
	TemplatePath string
}

func NewRenderer(templatePath string) *Renderer {
	return &Renderer{TemplatePath: templatePath}
}

// RenderExcel writes the classification results and totals into the
// template and saves the result at outputPath. The file is written to a
// temporary sibling path first and renamed into place, so a failed render
// never leaves a partial report behind.
func (r *Renderer) RenderExcel(set *models.MatchSet, totals models.Totals, outputPath string) error {
	f, err := excelize.OpenFile(r.TemplatePath)
	if err != nil {
		return &ReportError{Stage: "template open", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return &ReportError{Stage: "template open", Err: fmt.Errorf("template has no active sheet")}
	}

	if err := r.populate(f, sheet, set, totals); err != nil {
		return &ReportError{Stage: "populate", Err: err}
	}

	// excelize.SaveAs refuses unknown extensions, so the temporary file
	// must keep a workbook suffix.
	tmpPath := outputPath + ".tmp.xlsx"
	if err := f.SaveAs(tmpPath); err != nil {
		return &ReportError{Stage: "save", Err: err}
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return &ReportError{Stage: "save", Err: err}
	}

	fmt.Printf("[report] workbook written to %s\n", filepath.Base(outputPath))
	return nil
}

func (r *Renderer) populate(f *excelize.File, sheet string, set *models.MatchSet, totals models.Totals) error {
	setAmount(f, sheet, cellTotalBooked, totals.TotalBooked)
	setAmount(f, sheet, cellTotalNotBooked, totals.TotalPartial+totals.TotalUnmatched)

	styles, err := newStyleSet(f)
	if err != nil {
		return err
	}

	// Section: invoices with no vendor counterpart.
	row := sectionStartRow
	headerRows := []int{row}
	f.SetCellValue(sheet, cell("A", row), "Invoice not booked")
	row++
	for _, u := range set.Unmatched {
		f.SetCellValue(sheet, cell("A", row), u.InvoiceNumber)
		setAmount(f, sheet, cell("C", row), u.Amount)
		row++
	}

	// Section: matched invoices whose booked amount falls short.
	row++
	headerRows = append(headerRows, row)
	f.SetCellValue(sheet, cell("A", row), "Payment not booked")
	row++
	for _, d := range set.Deltas {
		f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("Payment not recorded as per SOA (%s)", d.InvoiceNumber))
		setAmount(f, sheet, cell("C", row), d.Difference)
		row++
	}

	// Vertical rails down A-D for the whole data region, then a bottom
	// border closing the section on A-C.
	if err := f.SetCellStyle(sheet, cell("A", borderFromRow), cell("D", row-1), styles.leftRight); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cell("A", row-1), cell("C", row-1), styles.leftRightBottom); err != nil {
		return err
	}
	for _, hr := range headerRows {
		if err := f.SetCellStyle(sheet, cell("A", hr), cell("A", hr), styles.boldLeftRight); err != nil {
			return err
		}
	}

	return r.writeTotalsBlock(f, sheet, row, totals, styles)
}

// writeTotalsBlock writes the three label/value pairs, spaced two rows
// apart, with the Difference row in bold red to draw the eye.
func (r *Renderer) writeTotalsBlock(f *excelize.File, sheet string, startRow int, totals models.Totals, styles *styleSet) error {
	labels := []struct {
		label string
		value float64
		isRed bool
	}{
		{"Vendor Claimed Total", totals.VendorClaimedTotal, false},
		{"Adjusted Books Balance", totals.AdjustedBooksBalance, false},
		{"Difference", totals.Difference, true},
	}

	for i, l := range labels {
		row := startRow + i*2

		f.SetCellValue(sheet, cell("A", row), l.label)
		setAmount(f, sheet, cell("D", row), l.value)

		labelStyle, valueStyle := styles.boldBottom, styles.boldBox
		if l.isRed {
			labelStyle, valueStyle = styles.boldRedBottom, styles.boldRedBox
		}
		if err := f.SetCellStyle(sheet, cell("A", row), cell("A", row), labelStyle); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell("B", row), cell("C", row), styles.bottom); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell("D", row), cell("D", row), valueStyle); err != nil {
			return err
		}

		// Border the spacer row between pairs so the block reads as one
		// table; the Difference row ends the block.
		if i < len(labels)-1 {
			spacer := row + 1
			if err := f.SetCellStyle(sheet, cell("A", spacer), cell("C", spacer), styles.bottom); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell("D", spacer), cell("D", spacer), styles.box); err != nil {
				return err
			}
		}
	}
	return nil
}

// setAmount writes a numeric cell, leaving it blank when the value is NaN
// so missing inputs stay visibly missing instead of becoming zeros.
func setAmount(f *excelize.File, sheet, ref string, v float64) {
	if math.IsNaN(v) {
		return
	}
	f.SetCellValue(sheet, ref, v)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// styleSet holds the style IDs used by the renderer. excelize styles are
// whole-cell, so font and border combinations are pre-built.
type styleSet struct {
	leftRight       int
	leftRightBottom int
	bottom          int
	box             int
	boldLeftRight   int
	boldBottom      int
	boldRedBottom   int
	boldBox         int
	boldRedBox      int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	thin := func(types ...string) []excelize.Border {
		borders := make([]excelize.Border, len(types))
		for i, t := range types {
			borders[i] = excelize.Border{Type: t, Color: "000000", Style: 1}
		}
		return borders
	}
	bold := &excelize.Font{Bold: true}
	boldRed := &excelize.Font{Bold: true, Color: "FF0000"}

	var s styleSet
	var err error
	if s.leftRight, err = f.NewStyle(&excelize.Style{Border: thin("left", "right")}); err != nil {
		return nil, err
	}
	if s.leftRightBottom, err = f.NewStyle(&excelize.Style{Border: thin("left", "right", "bottom")}); err != nil {
		return nil, err
	}
	if s.bottom, err = f.NewStyle(&excelize.Style{Border: thin("bottom")}); err != nil {
		return nil, err
	}
	if s.box, err = f.NewStyle(&excelize.Style{Border: thin("top", "bottom", "left", "right")}); err != nil {
		return nil, err
	}
	if s.boldLeftRight, err = f.NewStyle(&excelize.Style{Font: bold, Border: thin("left", "right")}); err != nil {
		return nil, err
	}
	if s.boldBottom, err = f.NewStyle(&excelize.Style{Font: bold, Border: thin("bottom")}); err != nil {
		return nil, err
	}
	if s.boldRedBottom, err = f.NewStyle(&excelize.Style{Font: boldRed, Border: thin("bottom")}); err != nil {
		return nil, err
	}
	if s.boldBox, err = f.NewStyle(&excelize.Style{Font: bold, Border: thin("top", "bottom", "left", "right")}); err != nil {
		return nil, err
	}
	if s.boldRedBox, err = f.NewStyle(&excelize.Style{Font: boldRed, Border: thin("top", "bottom", "left", "right")}); err != nil {
		return nil, err
	}
	return &s, nil
}
