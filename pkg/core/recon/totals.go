package recon

import (
	"math"

	"vendor_recon/pkg/models"
)

// DeriveTotals combines the matcher aggregates with the vendor-claimed
// total. Pure function; every derived quantity is rounded to 2 decimals so
// stored and displayed values agree.
//
// Unparsable amounts (NaN) contribute zero to the sums. They remain visible
// on the individual records, so the anomaly is reported without corrupting
// the arithmetic.
func DeriveTotals(set *models.MatchSet, vendorClaimedTotal float64) models.Totals {
	var booked, partial, unmatched float64
	for _, m := range set.Fully {
		booked += orZero(m.SOARemaining)
	}
	for _, d := range set.Deltas {
		partial += orZero(d.Difference)
	}
	for _, u := range set.Unmatched {
		unmatched += orZero(u.Amount)
	}

	t := models.Totals{
		TotalBooked:        models.Round2(booked),
		TotalPartial:       models.Round2(partial),
		TotalUnmatched:     models.Round2(unmatched),
		VendorClaimedTotal: models.Round2(vendorClaimedTotal),
	}
	t.AdjustedBooksBalance = models.Round2(t.TotalBooked + t.TotalUnmatched + t.TotalPartial)
	t.Difference = models.Round2(t.VendorClaimedTotal - t.AdjustedBooksBalance)
	return t
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
