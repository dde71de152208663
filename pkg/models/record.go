package models

import "math"

// CanonicalRecord is the common shape both sides of a reconciliation are
// normalized into. Vendor records come from the ledger export; SOA records
// come either from a mapped spreadsheet or from LLM table extraction.
type CanonicalRecord struct {
	Row             int     `json:"row"`
	Date            string  `json:"date"` // ISO yyyy-mm-dd, "" when unparsable
	InvoiceNumber   string  `json:"invoice_number"`
	Amount          float64 `json:"amount"`           // absolute value, NaN when unparsable
	RemainingAmount float64 `json:"remaining_amount"` // absolute value, NaN when unparsable
}

// MatchedPair carries both sides of an invoice that was found in the vendor
// ledger. FullMatch and PartialMatch share this shape; the classification is
// decided by the tolerance rule in the matcher.
type MatchedPair struct {
	Row             int     `json:"row"`
	InvoiceNumber   string  `json:"invoice_number"`
	SOADate         string  `json:"date_soa"`
	VendorDate      string  `json:"date_vendor"`
	SOAAmount       float64 `json:"soa_amount"`
	VendorAmount    float64 `json:"vendor_amount"`
	SOARemaining    float64 `json:"soa_remaining"`
	VendorRemaining float64 `json:"vendor_remaining"`
}

// PartialDelta is the per-invoice shortfall recorded for a partial match.
// Difference is clamped to zero when the vendor side carries more than the
// SOA claims; only vendor-favorable gaps are tracked as payment not booked.
type PartialDelta struct {
	InvoiceNumber string  `json:"invoice_number"`
	Difference    float64 `json:"difference"`
}

// Unmatched is an SOA line with no vendor counterpart. InvoiceNumber keeps
// the raw, untokenized identifier text so the user sees exactly what the
// statement said.
type Unmatched struct {
	Row             int     `json:"row"`
	InvoiceNumber   string  `json:"invoice_number"`
	Amount          float64 `json:"amount"`
	RemainingAmount float64 `json:"remaining_amount"`
	SOADate         string  `json:"date_soa"`
}

// MatchSet is the classified outcome of one reconciliation run.
type MatchSet struct {
	Fully     []MatchedPair  `json:"fully_matched"`
	Partial   []MatchedPair  `json:"partially_matched"`
	Unmatched []Unmatched    `json:"unmatched"`
	Deltas    []PartialDelta `json:"partial_deltas"`
}

// Totals is the derived summary block written into the report.
type Totals struct {
	TotalBooked          float64 `json:"total_booked"`
	TotalPartial         float64 `json:"total_partial"`
	TotalUnmatched       float64 `json:"total_unmatched"`
	AdjustedBooksBalance float64 `json:"adjusted_books_balance"`
	VendorClaimedTotal   float64 `json:"vendor_claimed_total"`
	Difference           float64 `json:"difference"`
}

// Round2 rounds to 2 decimal places, the reporting precision used for every
// derived amount. NaN passes through so missing values stay visible.
func Round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
}
