package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vendor_recon/pkg/core/ingest"
	"vendor_recon/pkg/models"
)

type mockExtractor struct {
	extractTableFn func(ctx context.Context, document []byte, mimeType string, userComments string) (*ingest.RawTable, error)
	extractTotalFn func(ctx context.Context, document []byte, mimeType string) (float64, error)
	mapColumnsFn   func(ctx context.Context, headers []string) (map[string]string, error)
}

func (m *mockExtractor) ExtractInvoiceTable(ctx context.Context, document []byte, mimeType string, userComments string) (*ingest.RawTable, error) {
	return m.extractTableFn(ctx, document, mimeType, userComments)
}

func (m *mockExtractor) ExtractClaimedTotal(ctx context.Context, document []byte, mimeType string) (float64, error) {
	return m.extractTotalFn(ctx, document, mimeType)
}

func (m *mockExtractor) MapColumns(ctx context.Context, headers []string) (map[string]string, error) {
	return m.mapColumnsFn(ctx, headers)
}

type mockRenderer struct {
	set    *models.MatchSet
	totals models.Totals
}

func (m *mockRenderer) RenderExcel(set *models.MatchSet, totals models.Totals, outputPath string) error {
	m.set = set
	m.totals = totals
	return os.WriteFile(outputPath, []byte("xlsx"), 0o644)
}

func writeXLSX(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func vendorRows() [][]interface{} {
	return [][]interface{}{
		{"Posting Date", "External Document No.", "Amount (LCY)", "Remaining Amt. (LCY)"},
		{"2024-12-01", "INV-001", -1000.0, 1000.0},
		{"2024-12-02", "INV-002", -500.0, 200.0},
	}
}

func TestRunClean(t *testing.T) {
	dir := t.TempDir()
	vendorPath := writeXLSX(t, dir, "vendor.xlsx", vendorRows())
	soaPath := writeXLSX(t, dir, "soa.xlsx", [][]interface{}{
		{"Doc Date", "Ref No", "Balance"},
		{"28/Dec/2024", "INV-001", 1000.0},
		{"29/Dec/2024", "INV-002", 500.0},
		{"", "", 1500.0},
	})

	var mappedHeaders []string
	extractor := &mockExtractor{
		mapColumnsFn: func(ctx context.Context, headers []string) (map[string]string, error) {
			// Copy: the orchestrator's normalize step renames this
			// slice's backing array in place after the call.
			mappedHeaders = append([]string(nil), headers...)
			return map[string]string{
				"Doc Date": "Date",
				"Ref No":   "Invoice Number",
				"Balance":  "Remaining Amount",
			}, nil
		},
	}
	renderer := &mockRenderer{}
	orch := NewOrchestrator(extractor, renderer, dir)

	result, err := orch.RunClean(context.Background(), vendorPath, soaPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"Doc Date", "Ref No", "Balance"}, mappedHeaders)
	assert.Len(t, result.MatchSet.Fully, 1)
	assert.Len(t, result.MatchSet.Partial, 1)
	assert.Equal(t, 1500.0, result.Totals.VendorClaimedTotal)
	assert.Equal(t, 300.0, result.Totals.TotalPartial)
	assert.FileExists(t, result.ReportPath)
	assert.Len(t, result.Sections, 5)
	assert.Same(t, result.MatchSet, renderer.set)
}

func TestRunCleanMappingFailure(t *testing.T) {
	dir := t.TempDir()
	vendorPath := writeXLSX(t, dir, "vendor.xlsx", vendorRows())
	soaPath := writeXLSX(t, dir, "soa.xlsx", [][]interface{}{
		{"Doc Date", "Ref No", "Balance"},
		{"", "", 0.0},
	})

	extractor := &mockExtractor{
		mapColumnsFn: func(ctx context.Context, headers []string) (map[string]string, error) {
			return nil, fmt.Errorf("provider unavailable")
		},
	}
	orch := NewOrchestrator(extractor, &mockRenderer{}, dir)

	_, err := orch.RunClean(context.Background(), vendorPath, soaPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column mapping failed")
}

func TestRunDirty(t *testing.T) {
	dir := t.TempDir()
	vendorPath := writeXLSX(t, dir, "vendor.xlsx", vendorRows())
	soaPath := filepath.Join(dir, "soa.pdf")
	require.NoError(t, os.WriteFile(soaPath, []byte("%PDF-1.4 fake"), 0o644))

	extractor := &mockExtractor{
		extractTableFn: func(ctx context.Context, document []byte, mimeType string, userComments string) (*ingest.RawTable, error) {
			assert.Equal(t, "application/pdf", mimeType)
			assert.Equal(t, "interest rows are invoices", userComments)
			return &ingest.RawTable{
				Headers: []string{"Date", "Invoice Number", "Amount", "Remaining Amount"},
				Rows: [][]string{
					{"28/Dec/2024", "INV-001", "1000.00", "1000.00"},
					{"29/Dec/2024", "INV-009", "99.00", "99.00"},
				},
			}, nil
		},
		extractTotalFn: func(ctx context.Context, document []byte, mimeType string) (float64, error) {
			return 1099.0, nil
		},
	}
	renderer := &mockRenderer{}
	orch := NewOrchestrator(extractor, renderer, dir)

	result, err := orch.RunDirty(context.Background(), vendorPath, soaPath, "interest rows are invoices")
	require.NoError(t, err)

	assert.Len(t, result.MatchSet.Fully, 1)
	assert.Len(t, result.MatchSet.Unmatched, 1)
	assert.Equal(t, 1099.0, result.Totals.VendorClaimedTotal)
	assert.Equal(t, 99.0, result.Totals.TotalUnmatched)
}

func TestRunDirtyConvertsSpreadsheets(t *testing.T) {
	dir := t.TempDir()
	vendorPath := writeXLSX(t, dir, "vendor.xlsx", vendorRows())
	soaPath := writeXLSX(t, dir, "soa_scan.xlsx", [][]interface{}{{"anything"}})

	converted := false
	extractor := &mockExtractor{
		extractTableFn: func(ctx context.Context, document []byte, mimeType string, userComments string) (*ingest.RawTable, error) {
			return &ingest.RawTable{
				Headers: []string{"Date", "Invoice Number", "Amount", "Remaining Amount"},
				Rows:    [][]string{{"28/Dec/2024", "INV-001", "1000.00", "1000.00"}},
			}, nil
		},
		extractTotalFn: func(ctx context.Context, document []byte, mimeType string) (float64, error) {
			return 1000.0, nil
		},
	}
	orch := NewOrchestrator(extractor, &mockRenderer{}, dir)
	orch.ConvertToPDF = func(ctx context.Context, inputPath, outDir string) (string, error) {
		converted = true
		pdfPath := filepath.Join(outDir, "soa_scan.pdf")
		return pdfPath, os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644)
	}

	_, err := orch.RunDirty(context.Background(), vendorPath, soaPath, "")
	require.NoError(t, err)
	assert.True(t, converted, "xlsx input should be converted before extraction")
}
