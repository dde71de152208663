// Package recon is the matching and classification engine: it joins SOA
// records to vendor records by invoice identifier and classifies every SOA
// line as fully matched, partially matched, or unmatched.
package recon

import (
	"math"
	"strings"

	"vendor_recon/pkg/models"
)

// Tolerance is the absolute remaining-amount gap below which two sides are
// considered agreed. It absorbs rounding and currency-conversion noise
// between independently maintained ledgers; it is a fixed amount, not a
// percentage.
const Tolerance = 1.0

// Match classifies every SOA record against the vendor ledger, preserving
// SOA order so reports are reproducible run to run.
//
// The match candidate is the first whitespace-delimited token of the SOA
// identifier: extraction sometimes concatenates trailing labels like
// "May 2022" onto the invoice number. Lookup is exact string equality after
// that tokenization; when several vendor rows share an identifier the first
// in vendor-table order wins.
func Match(vendor, soa []models.CanonicalRecord) *models.MatchSet {
	// Index of first vendor row per identifier.
	vendorIdx := make(map[string]int, len(vendor))
	for i, v := range vendor {
		if _, seen := vendorIdx[v.InvoiceNumber]; !seen {
			vendorIdx[v.InvoiceNumber] = i
		}
	}

	set := &models.MatchSet{}
	for _, s := range soa {
		raw := strings.TrimSpace(s.InvoiceNumber)
		candidate := firstToken(raw)

		var vi int
		matched := false
		if candidate != "" {
			vi, matched = vendorIdx[candidate]
		}
		if !matched {
			set.Unmatched = append(set.Unmatched, models.Unmatched{
				Row:             s.Row,
				InvoiceNumber:   raw,
				Amount:          s.Amount,
				RemainingAmount: s.RemainingAmount,
				SOADate:         s.Date,
			})
			continue
		}

		v := vendor[vi]
		pair := models.MatchedPair{
			Row:             s.Row,
			InvoiceNumber:   candidate,
			SOADate:         s.Date,
			VendorDate:      v.Date,
			SOAAmount:       s.Amount,
			VendorAmount:    v.Amount,
			SOARemaining:    s.RemainingAmount,
			VendorRemaining: v.RemainingAmount,
		}

		if math.Abs(s.RemainingAmount-v.RemainingAmount) < Tolerance {
			set.Fully = append(set.Fully, pair)
		} else {
			set.Partial = append(set.Partial, pair)
			set.Deltas = append(set.Deltas, models.PartialDelta{
				InvoiceNumber: candidate,
				Difference:    models.Round2(math.Max(s.RemainingAmount-v.RemainingAmount, 0)),
			})
		}
	}
	return set
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
