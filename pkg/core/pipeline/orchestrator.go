// Package pipeline wires ingestion, normalization, matching, and report
// rendering into the two end-to-end reconciliation flows.
package pipeline

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"vendor_recon/pkg/core/convert"
	"vendor_recon/pkg/core/ingest"
	"vendor_recon/pkg/core/normalize"
	"vendor_recon/pkg/core/recon"
	"vendor_recon/pkg/core/report"
	"vendor_recon/pkg/models"
)

// TableExtractor is the model-backed extraction surface the dirty flow
// depends on. *extract.Extractor satisfies it.
type TableExtractor interface {
	ExtractInvoiceTable(ctx context.Context, document []byte, mimeType string, userComments string) (*ingest.RawTable, error)
	ExtractClaimedTotal(ctx context.Context, document []byte, mimeType string) (float64, error)
	MapColumns(ctx context.Context, headers []string) (map[string]string, error)
}

// ExcelRenderer produces the workbook report. *report.Renderer satisfies it.
type ExcelRenderer interface {
	RenderExcel(set *models.MatchSet, totals models.Totals, outputPath string) error
}

// Result is everything a caller needs to deliver a finished run: the
// workbook on disk plus the text sections to post alongside it.
type Result struct {
	ReportPath string
	Sections   []string
	SOA        []models.CanonicalRecord
	MatchSet   *models.MatchSet
	Totals     models.Totals
	Elapsed    time.Duration
}

// Orchestrator runs reconciliations. ConvertToPDF may be swapped out in
// tests to avoid shelling out to LibreOffice.
type Orchestrator struct {
	Extractor    TableExtractor
	Renderer     ExcelRenderer
	OutputDir    string
	ConvertToPDF func(ctx context.Context, inputPath, outDir string) (string, error)
}

func NewOrchestrator(extractor TableExtractor, renderer ExcelRenderer, outputDir string) *Orchestrator {
	return &Orchestrator{
		Extractor:    extractor,
		Renderer:     renderer,
		OutputDir:    outputDir,
		ConvertToPDF: convert.ToPDF,
	}
}

// RunClean reconciles a vendor ledger export against a well-formed SOA
// spreadsheet. The SOA's column names are mapped to canonical names by the
// model; its last row is taken as the vendor's claimed total.
func (o *Orchestrator) RunClean(ctx context.Context, vendorPath, soaPath string) (*Result, error) {
	start := time.Now()
	fmt.Printf("[pipeline] clean run: vendor=%s soa=%s\n", filepath.Base(vendorPath), filepath.Base(soaPath))

	vendor, err := o.loadVendor(vendorPath)
	if err != nil {
		return nil, err
	}

	soaRaw, err := ingest.ReadWorkbook(soaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SOA file: %w", err)
	}

	mapping, err := o.Extractor.MapColumns(ctx, soaRaw.Headers)
	if err != nil {
		return nil, fmt.Errorf("column mapping failed: %w", err)
	}

	soa, claimedTotal, err := normalize.SOAFromMapped(soaRaw, mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize SOA: %w", err)
	}

	return o.finish(vendor, soa, claimedTotal, start)
}

// RunDirty reconciles against an SOA that only a model can read: a scan,
// a PDF, or a free-form spreadsheet. Spreadsheets are converted to PDF
// first; the invoice table and the claimed total are then extracted by
// separate model calls.
func (o *Orchestrator) RunDirty(ctx context.Context, vendorPath, soaPath, userComments string) (*Result, error) {
	start := time.Now()
	fmt.Printf("[pipeline] dirty run: vendor=%s soa=%s\n", filepath.Base(vendorPath), filepath.Base(soaPath))

	vendor, err := o.loadVendor(vendorPath)
	if err != nil {
		return nil, err
	}

	docPath := soaPath
	if convert.NeedsConversion(soaPath) {
		docPath, err = o.ConvertToPDF(ctx, soaPath, o.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("failed to convert SOA for extraction: %w", err)
		}
	}

	document, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SOA document: %w", err)
	}
	mimeType := documentMIMEType(docPath)

	soaRaw, err := o.Extractor.ExtractInvoiceTable(ctx, document, mimeType, userComments)
	if err != nil {
		return nil, fmt.Errorf("invoice table extraction failed: %w", err)
	}

	claimedTotal, err := o.Extractor.ExtractClaimedTotal(ctx, document, mimeType)
	if err != nil {
		return nil, fmt.Errorf("claimed total extraction failed: %w", err)
	}

	soa, err := normalize.SOAFromExtract(soaRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize extracted SOA: %w", err)
	}

	return o.finish(vendor, soa, claimedTotal, start)
}

func (o *Orchestrator) loadVendor(vendorPath string) ([]models.CanonicalRecord, error) {
	raw, err := ingest.ReadWorkbook(vendorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor ledger: %w", err)
	}
	vendor, err := normalize.Vendor(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize vendor ledger: %w", err)
	}
	return vendor, nil
}

func (o *Orchestrator) finish(vendor, soa []models.CanonicalRecord, claimedTotal float64, start time.Time) (*Result, error) {
	set := recon.Match(vendor, soa)
	totals := recon.DeriveTotals(set, claimedTotal)

	outputPath := filepath.Join(o.OutputDir, fmt.Sprintf("reconciliation_%s.xlsx", uuid.New().String()))
	if err := o.Renderer.RenderExcel(set, totals, outputPath); err != nil {
		return nil, err
	}

	result := &Result{
		ReportPath: outputPath,
		Sections:   report.Sections(soa, set, totals),
		SOA:        soa,
		MatchSet:   set,
		Totals:     totals,
		Elapsed:    time.Since(start),
	}
	fmt.Printf("[pipeline] done in %s: %d full, %d partial, %d unmatched\n",
		result.Elapsed.Round(time.Millisecond), len(set.Fully), len(set.Partial), len(set.Unmatched))
	return result, nil
}

func documentMIMEType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
