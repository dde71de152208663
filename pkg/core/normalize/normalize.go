// Package normalize maps heterogeneous tabular inputs (vendor ledger
// exports, SOA spreadsheets, LLM-extracted tables) onto the canonical
// record shape used by the matcher.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"vendor_recon/pkg/core/ingest"
	"vendor_recon/pkg/models"
)

// Canonical column names every input converges on.
const (
	ColDate      = "Date"
	ColInvoice   = "Invoice Number"
	ColAmount    = "Amount"
	ColRemaining = "Remaining Amount"
)

// Ledger-specific source columns required on the vendor side.
var vendorColumns = map[string]string{
	"Posting Date":          ColDate,
	"External Document No.": ColInvoice,
	"Amount (LCY)":          ColAmount,
	"Remaining Amt. (LCY)":  ColRemaining,
}

// SchemaError reports required columns that could not be resolved. It is a
// hard precondition failure, not retryable.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Missing, ", "))
}

// soaDateLayout is the textual day/abbreviated-month/year format the
// extraction service is instructed to emit (e.g. 28/Dec/2024).
const soaDateLayout = "02/Jan/2006"

// vendorDateLayouts are tried in order for ledger export dates, which vary
// with the export locale.
var vendorDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"2/1/2006",
	"02/01/2006",
	"02/Jan/2006",
	time.RFC3339,
}

// Vendor normalizes a ledger export. All four source columns must be
// present; rows whose cleaned identifier is blank or "nan" are dropped, as
// they can never participate in matching.
func Vendor(raw *ingest.RawTable) ([]models.CanonicalRecord, error) {
	cols := map[string]int{}
	var missing []string
	for src, canonical := range vendorColumns {
		idx := raw.ColumnIndex(src)
		if idx == -1 {
			missing = append(missing, src)
			continue
		}
		cols[canonical] = idx
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	var records []models.CanonicalRecord
	for i := range raw.Rows {
		inv := cleanInvoiceNumber(raw.Cell(i, cols[ColInvoice]))
		if inv == "" || strings.EqualFold(inv, "nan") {
			continue
		}
		records = append(records, models.CanonicalRecord{
			Row:             len(records),
			Date:            parseDate(raw.Cell(i, cols[ColDate]), vendorDateLayouts),
			InvoiceNumber:   inv,
			Amount:          parseAmount(raw.Cell(i, cols[ColAmount])),
			RemainingAmount: parseAmount(raw.Cell(i, cols[ColRemaining])),
		})
	}
	return records, nil
}

// SOAFromMapped normalizes a pre-structured SOA through an externally
// supplied header mapping. When the mapping resolves Amount but not
// Remaining Amount, the amount is duplicated; when it resolves neither, the
// input is unusable. The table's last row is the vendor-claimed total by
// convention and is removed from the data set. Returns the records and the
// claimed total.
func SOAFromMapped(raw *ingest.RawTable, mapping map[string]string) ([]models.CanonicalRecord, float64, error) {
	if len(mapping) == 0 {
		return nil, 0, &SchemaError{Missing: []string{ColDate, ColInvoice, ColAmount}}
	}
	raw.Rename(mapping)

	amountIdx := raw.ColumnIndex(ColAmount)
	remainingIdx := raw.ColumnIndex(ColRemaining)
	if remainingIdx == -1 && amountIdx == -1 {
		return nil, 0, &SchemaError{Missing: []string{ColAmount, ColRemaining}}
	}
	if remainingIdx == -1 {
		fmt.Println("[normalize] only one amount column detected, duplicating Amount into Remaining Amount")
		remainingIdx = amountIdx
	}
	if amountIdx == -1 {
		amountIdx = remainingIdx
	}

	if len(raw.Rows) == 0 {
		return nil, 0, &SchemaError{Missing: []string{ColRemaining}}
	}

	// Callers guarantee the input appends a totals row; its remaining
	// amount is the vendor's claimed total.
	last := len(raw.Rows) - 1
	claimed := parseAmount(raw.Cell(last, remainingIdx))
	raw.Rows = raw.Rows[:last]

	records := cleanSOARows(raw, amountIdx, remainingIdx)
	return records, claimed, nil
}

// SOAFromExtract normalizes a table produced by the markdown extraction
// path. The header row is already canonical and the claimed total is
// supplied by a separate extraction call, not a trailing row.
func SOAFromExtract(raw *ingest.RawTable) ([]models.CanonicalRecord, error) {
	amountIdx := raw.ColumnIndex(ColAmount)
	remainingIdx := raw.ColumnIndex(ColRemaining)
	var missing []string
	if amountIdx == -1 {
		missing = append(missing, ColAmount)
	}
	if remainingIdx == -1 {
		missing = append(missing, ColRemaining)
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return cleanSOARows(raw, amountIdx, remainingIdx), nil
}

// cleanSOARows applies the shared SOA cleaning: drop TOTAL rows, parse
// dates and amounts, assign Row as the position in the cleaned sequence.
// Blank identifiers are retained here; the SOA side shows them to the user
// as unmatched rather than hiding them.
func cleanSOARows(raw *ingest.RawTable, amountIdx, remainingIdx int) []models.CanonicalRecord {
	dateIdx := raw.ColumnIndex(ColDate)
	invIdx := raw.ColumnIndex(ColInvoice)

	var records []models.CanonicalRecord
	for i := range raw.Rows {
		rawDate := raw.Cell(i, dateIdx)
		if strings.EqualFold(strings.TrimSpace(rawDate), "TOTAL") {
			continue
		}
		records = append(records, models.CanonicalRecord{
			Row:             len(records),
			Date:            parseDate(rawDate, []string{soaDateLayout}),
			InvoiceNumber:   strings.TrimSpace(raw.Cell(i, invIdx)),
			Amount:          parseAmount(raw.Cell(i, amountIdx)),
			RemainingAmount: parseAmount(raw.Cell(i, remainingIdx)),
		})
	}
	return records
}

// cleanInvoiceNumber trims and stringifies an identifier cell. Numeric
// identifiers that are whole numbers lose their fractional rendering
// ("1002.0" becomes "1002") so they can match the SOA side's text form.
func cleanInvoiceNumber(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return s
}

// parseDate normalizes to ISO form, returning "" when no layout matches.
// An unparsable date is non-fatal; the record still participates in
// matching with a visibly missing date.
func parseDate(cell string, layouts []string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// parseAmount coerces a cell to a non-negative decimal. Sign conventions
// vary between ledgers, so the sign is discarded. Unparsable values become
// NaN, which propagates as a visible missing value rather than a silent
// zero.
func parseAmount(cell string) float64 {
	s := strings.TrimSpace(cell)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return math.Abs(f)
}
