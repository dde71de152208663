package report

import (
	"math"
	"strings"
	"testing"

	"vendor_recon/pkg/models"
)

func TestSections(t *testing.T) {
	soa := []models.CanonicalRecord{
		{InvoiceNumber: "INV-001", Date: "2024-12-28", Amount: 1000, RemainingAmount: 1000},
		{InvoiceNumber: "INV-002", Date: "", Amount: math.NaN(), RemainingAmount: 250},
	}
	set := &models.MatchSet{
		Fully:     []models.MatchedPair{{InvoiceNumber: "INV-001", SOADate: "2024-12-28", SOARemaining: 1000, VendorRemaining: 1000}},
		Unmatched: []models.Unmatched{{InvoiceNumber: "INV-002", Amount: 250, RemainingAmount: 250}},
	}
	totals := models.Totals{TotalBooked: 1000, TotalUnmatched: 250, VendorClaimedTotal: 1250}

	blocks := Sections(soa, set, totals)
	if len(blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(blocks))
	}

	parsed := blocks[0]
	if !strings.Contains(parsed, "FULL SOA PARSED INVOICE TABLE") {
		t.Errorf("parsed table block missing title: %q", parsed)
	}
	if !strings.Contains(parsed, "NaN") {
		t.Errorf("unparsable amount should surface as NaN: %q", parsed)
	}
	if !strings.Contains(parsed, "-") {
		t.Errorf("missing date should surface as dash: %q", parsed)
	}

	if !strings.Contains(blocks[1], "1,250.00") {
		t.Errorf("claimed total block = %q", blocks[1])
	}
	if !strings.Contains(blocks[2], "INV-001") || !strings.Contains(blocks[2], "Total Booked Amount: `1,000.00`") {
		t.Errorf("booked block = %q", blocks[2])
	}
	if !strings.Contains(blocks[3], "(none)") {
		t.Errorf("empty partial section should say (none): %q", blocks[3])
	}
	if !strings.Contains(blocks[4], "Total Unbooked Amount: `250.00`") {
		t.Errorf("unmatched block = %q", blocks[4])
	}
}

func TestMoneyGrouping(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{64650, "64,650.00"},
		{1234567.5, "1,234,567.50"},
		{999.99, "999.99"},
		{0, "0.00"},
		{math.NaN(), "NaN"},
	}
	for _, tc := range cases {
		if got := money(tc.in); got != tc.want {
			t.Errorf("money(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
