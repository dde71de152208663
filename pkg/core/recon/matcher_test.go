package recon

import (
	"math"
	"testing"

	"vendor_recon/pkg/models"
)

func rec(row int, inv string, amount, remaining float64) models.CanonicalRecord {
	return models.CanonicalRecord{
		Row:             row,
		Date:            "2024-12-28",
		InvoiceNumber:   inv,
		Amount:          amount,
		RemainingAmount: remaining,
	}
}

func TestMatchClassification(t *testing.T) {
	vendor := []models.CanonicalRecord{
		rec(0, "INV-001", 1000, 1000),
		rec(1, "INV-002", 500, 200),
		rec(2, "INV-003", 750, 750),
	}
	soa := []models.CanonicalRecord{
		rec(0, "INV-001", 1000, 1000.50), // within tolerance
		rec(1, "INV-002", 500, 500),      // short by 300
		rec(2, "INV-004", 99.99, 99.99),  // not in ledger
		rec(3, "INV-003", 750, 750),
	}

	set := Match(vendor, soa)

	if len(set.Fully) != 2 {
		t.Fatalf("expected 2 fully matched, got %d", len(set.Fully))
	}
	if set.Fully[0].InvoiceNumber != "INV-001" || set.Fully[1].InvoiceNumber != "INV-003" {
		t.Errorf("fully matched order wrong: %+v", set.Fully)
	}
	if len(set.Partial) != 1 || set.Partial[0].InvoiceNumber != "INV-002" {
		t.Fatalf("expected INV-002 partial, got %+v", set.Partial)
	}
	if len(set.Deltas) != 1 || set.Deltas[0].Difference != 300 {
		t.Errorf("expected shortfall 300, got %+v", set.Deltas)
	}
	if len(set.Unmatched) != 1 || set.Unmatched[0].InvoiceNumber != "INV-004" {
		t.Fatalf("expected INV-004 unmatched, got %+v", set.Unmatched)
	}
	if set.Unmatched[0].Amount != 99.99 {
		t.Errorf("unmatched amount = %v, want 99.99", set.Unmatched[0].Amount)
	}
}

func TestMatchFirstTokenCandidate(t *testing.T) {
	vendor := []models.CanonicalRecord{rec(0, "INV-004934", 100, 100)}
	soa := []models.CanonicalRecord{rec(0, "INV-004934 May 2022", 100, 100)}

	set := Match(vendor, soa)

	if len(set.Fully) != 1 {
		t.Fatalf("expected trailing label to be ignored, got %+v", set)
	}
	if set.Fully[0].InvoiceNumber != "INV-004934" {
		t.Errorf("matched identifier = %q, want tokenized form", set.Fully[0].InvoiceNumber)
	}
}

func TestMatchExactEqualityOnly(t *testing.T) {
	// No fuzzy or prefix matching: INV-1 must not match INV-10.
	vendor := []models.CanonicalRecord{rec(0, "INV-10", 100, 100)}
	soa := []models.CanonicalRecord{rec(0, "INV-1", 100, 100)}

	set := Match(vendor, soa)
	if len(set.Unmatched) != 1 {
		t.Fatalf("expected no match for different identifiers, got %+v", set)
	}
}

func TestMatchToleranceBoundary(t *testing.T) {
	cases := []struct {
		name      string
		soaRem    float64
		vendorRem float64
		full      bool
	}{
		{"gap just under tolerance", 100.99, 100.00, true},
		{"gap exactly tolerance", 101.00, 100.00, false},
		{"gap above tolerance", 150.00, 100.00, false},
		{"vendor above soa within tolerance", 100.00, 100.99, true},
		{"identical", 100.00, 100.00, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vendor := []models.CanonicalRecord{rec(0, "INV-001", 100, tc.vendorRem)}
			soa := []models.CanonicalRecord{rec(0, "INV-001", 100, tc.soaRem)}
			set := Match(vendor, soa)
			if tc.full && len(set.Fully) != 1 {
				t.Errorf("expected full match, got %+v", set)
			}
			if !tc.full && len(set.Partial) != 1 {
				t.Errorf("expected partial match, got %+v", set)
			}
		})
	}
}

func TestMatchShortfallClampedAtZero(t *testing.T) {
	// Vendor books MORE than the SOA claims: a discrepancy, but not an
	// amount the vendor is owed.
	vendor := []models.CanonicalRecord{rec(0, "INV-001", 100, 500)}
	soa := []models.CanonicalRecord{rec(0, "INV-001", 100, 100)}

	set := Match(vendor, soa)
	if len(set.Partial) != 1 {
		t.Fatalf("expected partial match, got %+v", set)
	}
	if set.Deltas[0].Difference != 0 {
		t.Errorf("negative shortfall should clamp to 0, got %v", set.Deltas[0].Difference)
	}
}

func TestMatchDuplicateVendorRowsFirstWins(t *testing.T) {
	vendor := []models.CanonicalRecord{
		rec(0, "INV-001", 100, 100),
		rec(1, "INV-001", 100, 999),
	}
	soa := []models.CanonicalRecord{rec(0, "INV-001", 100, 100)}

	set := Match(vendor, soa)
	if len(set.Fully) != 1 {
		t.Fatalf("expected full match against first vendor row, got %+v", set)
	}
	if set.Fully[0].VendorRemaining != 100 {
		t.Errorf("matched against wrong vendor row: %+v", set.Fully[0])
	}
}

func TestMatchBlankIdentifierUnmatched(t *testing.T) {
	vendor := []models.CanonicalRecord{rec(0, "INV-001", 100, 100)}
	soa := []models.CanonicalRecord{rec(0, "   ", 42, 42)}

	set := Match(vendor, soa)
	if len(set.Unmatched) != 1 {
		t.Fatalf("expected blank identifier to be unmatched, got %+v", set)
	}
	if set.Unmatched[0].InvoiceNumber != "" {
		t.Errorf("unmatched identifier should be trimmed raw value, got %q", set.Unmatched[0].InvoiceNumber)
	}
}

func TestMatchNaNRemainingIsPartial(t *testing.T) {
	// An unparsable remaining amount can never be shown to agree, so the
	// pair is flagged partial with an indeterminate shortfall.
	vendor := []models.CanonicalRecord{rec(0, "INV-001", 100, 100)}
	soa := []models.CanonicalRecord{
		{Row: 0, InvoiceNumber: "INV-001", Amount: 100, RemainingAmount: math.NaN()},
	}

	set := Match(vendor, soa)
	if len(set.Partial) != 1 {
		t.Fatalf("expected partial match, got %+v", set)
	}
	if !math.IsNaN(set.Deltas[0].Difference) {
		t.Errorf("shortfall should be NaN, got %v", set.Deltas[0].Difference)
	}
}

func TestMatchDeterministic(t *testing.T) {
	vendor := []models.CanonicalRecord{
		rec(0, "A", 1, 1), rec(1, "B", 2, 2), rec(2, "C", 3, 3),
	}
	soa := []models.CanonicalRecord{
		rec(0, "C", 3, 3), rec(1, "X", 9, 9), rec(2, "A", 1, 5),
	}

	first := Match(vendor, soa)
	second := Match(vendor, soa)

	if len(first.Fully) != len(second.Fully) ||
		len(first.Partial) != len(second.Partial) ||
		len(first.Unmatched) != len(second.Unmatched) {
		t.Fatalf("repeated runs disagree: %+v vs %+v", first, second)
	}
	for i := range first.Fully {
		if first.Fully[i] != second.Fully[i] {
			t.Errorf("fully[%d] differs between runs", i)
		}
	}
}
