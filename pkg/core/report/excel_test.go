package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vendor_recon/pkg/models"
)

const testTemplate = "../../../resources/report_template.xlsx"

func TestRenderExcel(t *testing.T) {
	set := &models.MatchSet{
		Fully: []models.MatchedPair{{InvoiceNumber: "INV-001", SOARemaining: 1000}},
		Partial: []models.MatchedPair{
			{InvoiceNumber: "INV-002", SOARemaining: 500, VendorRemaining: 200},
		},
		Deltas: []models.PartialDelta{{InvoiceNumber: "INV-002", Difference: 300}},
		Unmatched: []models.Unmatched{
			{InvoiceNumber: "INV-004", Amount: 99.99},
			{InvoiceNumber: "INV-005", Amount: 0.01},
		},
	}
	totals := models.Totals{
		TotalBooked:          1000,
		TotalPartial:         300,
		TotalUnmatched:       100,
		AdjustedBooksBalance: 1400,
		VendorClaimedTotal:   1450,
		Difference:           50,
	}

	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	renderer := NewRenderer(testTemplate)
	require.NoError(t, renderer.RenderExcel(set, totals, outPath))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	cellValue := func(ref string) string {
		// Raw read: the template carries number formats, and the
		// expectations below are the values as written.
		v, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "1000", cellValue("D11"))
	assert.Equal(t, "400", cellValue("D14")) // partial + unmatched

	// Unmatched section starts at row 15.
	assert.Equal(t, "Invoice not booked", cellValue("A15"))
	assert.Equal(t, "INV-004", cellValue("A16"))
	assert.Equal(t, "99.99", cellValue("C16"))
	assert.Equal(t, "INV-005", cellValue("A17"))

	// Shortfall section follows after one blank row.
	assert.Equal(t, "Payment not booked", cellValue("A19"))
	assert.Equal(t, "Payment not recorded as per SOA (INV-002)", cellValue("A20"))
	assert.Equal(t, "300", cellValue("C20"))

	// Totals block: pairs two rows apart, starting right after the data.
	assert.Equal(t, "Vendor Claimed Total", cellValue("A21"))
	assert.Equal(t, "1450", cellValue("D21"))
	assert.Equal(t, "Adjusted Books Balance", cellValue("A23"))
	assert.Equal(t, "1400", cellValue("D23"))
	assert.Equal(t, "Difference", cellValue("A25"))
	assert.Equal(t, "50", cellValue("D25"))
}

func TestRenderExcelEmptySections(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.xlsx")
	renderer := NewRenderer(testTemplate)
	require.NoError(t, renderer.RenderExcel(&models.MatchSet{}, models.Totals{}, outPath))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	v, err := f.GetCellValue(sheet, "A15")
	require.NoError(t, err)
	assert.Equal(t, "Invoice not booked", v)
}

func TestRenderExcelMissingTemplate(t *testing.T) {
	renderer := NewRenderer("no-such-template.xlsx")
	err := renderer.RenderExcel(&models.MatchSet{}, models.Totals{}, filepath.Join(t.TempDir(), "out.xlsx"))
	require.Error(t, err)

	var reportErr *ReportError
	require.ErrorAs(t, err, &reportErr)
	assert.Equal(t, "template open", reportErr.Stage)
}
