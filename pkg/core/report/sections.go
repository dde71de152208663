package report

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vendor_recon/pkg/models"
)

var moneyPrinter = message.NewPrinter(language.English)

// Sections builds the text blocks that accompany the workbook: the parsed
// SOA echoed back for verification, then one table per classification with
// its labeled total. Each block is an independent message.
func Sections(soa []models.CanonicalRecord, set *models.MatchSet, totals models.Totals) []string {
	blocks := []string{
		parsedTableBlock(soa),
		fmt.Sprintf("Vendor Claimed Total: `%s`", money(totals.VendorClaimedTotal)),
		matchedBlock("FULLY BOOKED INVOICES", set.Fully, "Total Booked Amount", totals.TotalBooked),
		matchedBlock("PARTIALLY BOOKED INVOICES", set.Partial, "Total Shortfall", totals.TotalPartial),
		unmatchedBlock(set.Unmatched, totals.TotalUnmatched),
	}
	return blocks
}

func parsedTableBlock(soa []models.CanonicalRecord) string {
	rows := make([][]string, 0, len(soa))
	for _, rec := range soa {
		rows = append(rows, []string{
			rec.InvoiceNumber,
			dateOrDash(rec.Date),
			money(rec.Amount),
			money(rec.RemainingAmount),
		})
	}
	table := formatTable([]string{"Invoice Number", "Date", "Amount", "Remaining Amount"}, rows)
	return fmt.Sprintf("*FULL SOA PARSED INVOICE TABLE (PLEASE CHECK):*\n```%s```", table)
}

func matchedBlock(title string, pairs []models.MatchedPair, totalLabel string, total float64) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{
			p.InvoiceNumber,
			dateOrDash(p.SOADate),
			money(p.SOARemaining),
			money(p.VendorRemaining),
		})
	}
	table := formatTable([]string{"Invoice Number", "SOA Date", "SOA Remaining", "Booked Remaining"}, rows)
	return fmt.Sprintf("*%s:*\n```%s```\n%s: `%s`", title, table, totalLabel, money(total))
}

func unmatchedBlock(unmatched []models.Unmatched, total float64) string {
	rows := make([][]string, 0, len(unmatched))
	for _, u := range unmatched {
		rows = append(rows, []string{
			u.InvoiceNumber,
			dateOrDash(u.SOADate),
			money(u.Amount),
			money(u.RemainingAmount),
		})
	}
	table := formatTable([]string{"Invoice Number", "SOA Date", "Amount", "Remaining Amount"}, rows)
	return fmt.Sprintf("*UNBOOKED INVOICES:*\n```%s```\nTotal Unbooked Amount: `%s`", table, money(total))
}

// formatTable lays out rows in fixed-width columns so the block renders
// cleanly in a monospace chat message.
func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if i < len(widths) && len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, v := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(v)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(v)))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	if len(rows) == 0 {
		sb.WriteString("(none)\n")
		return sb.String()
	}
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

func money(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return moneyPrinter.Sprintf("%.2f", v)
}

func dateOrDash(d string) string {
	if d == "" {
		return "-"
	}
	return d
}
