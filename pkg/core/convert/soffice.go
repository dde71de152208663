// Package convert shells out to LibreOffice to turn spreadsheet uploads
// into PDFs that document-capable models accept.
package convert

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const conversionTimeout = 90 * time.Second

// ToPDF converts the file at inputPath into a PDF written next to it in
// outDir and returns the resulting path. Requires the soffice binary on
// PATH.
func ToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, conversionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "soffice",
		"--headless", "--convert-to", "pdf",
		"--outdir", outDir, inputPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("soffice conversion failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	base := filepath.Base(inputPath)
	pdfName := strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	return filepath.Join(outDir, pdfName), nil
}

// NeedsConversion reports whether the file must be converted before it can
// be sent as a model document. PDFs and plain text pass through as-is.
func NeedsConversion(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".csv":
		return false
	}
	return true
}
