// Package prompt holds the system prompts for the SOA extraction agents.
// The extraction rules here define the wire contract the table parser in
// pkg/core/extract depends on; change them together.
package prompt

import (
	"fmt"
	"strings"
)

// TableExtraction instructs the model to emit the invoice table as a
// markdown pipe table with the exact canonical header. The parser rejects
// anything that does not follow these rules.
const TableExtraction = `You are a financial assistant in an accounts-payable team. Your task is to extract invoice data
from vendor Statements of Account (SOAs) uploaded as PDF documents. Your output must follow these strict rules:

1. Output only a markdown table and nothing else — no explanations, summaries, or introductions.
2. The table must contain exactly four columns with these headers (case-sensitive):
   | Date | Invoice Number | Amount | Remaining Amount |
3. Each row must represent one invoice, with its date, invoice number, amount, and remaining amount.
4. Dates must be formatted as DD/Mon/YYYY (e.g., 28/Dec/2024).
5. Amounts must be raw numbers only — no commas, no currency symbols.
6. For extracting the correct Invoice Number column, apply the following logic:
   - Prioritize columns named (in order): "Invoice Number", then "Document No", then "External Document No"
   - Within those columns, extract values that follow this pattern: an uppercase letter prefix followed by digits or special characters, e.g.:
     - INVMMT-24-279
     - S-INV+-04868
     - PINV-004934
   - Ignore suffixes or extra labels like "May 2022" that come after the actual invoice number.
7. At the end of the SOA, there may be additional charges such as interest or finance fees that do not have a Date or Invoice Number. Only include such a row if the row is clearly labeled with the word "interest" (case-insensitive) in the original document. If detected, include a single additional row at the bottom of the table like this:
   | - | INTEREST | <amount> | <remaining amount> |
   Be VERY alert of this situation, as it can happen in any SOA. But do not confuse it for an actual invoice row or the total row at the bottom.
8. The markdown table must begin and end with pipe (|) characters for every row, including the header.
9. Do not include any TOTAL row. Exclude any totals or summaries at the bottom of the table.
10. If any row has missing or unclear data (and is not an interest charge), skip it — do not guess or add placeholders.
11. If there is no separate "Remaining Amount" column, assume the "Amount" is also the "Remaining Amount" and duplicate that value in both columns.`

// ClaimedTotal instructs the model to answer with a bare decimal number.
const ClaimedTotal = `You are a financial assistant in an accounts-payable team. Your job is to extract the total claimed by the vendor from a Statement of Account (SOA) PDF.
The total is usually labeled something like "Total", "Outstanding", "Balance Due", or similar, and appears at the bottom of the document.
Follow these rules:
1. Respond with only the number — no explanation, no labels, no formatting.
2. Use dot as the decimal separator.
3. Strip any currency symbols, commas, or spaces.
4. If there are multiple totals, select the one that reflects the final amount due to the vendor.`

// ColumnMappingSystem frames the column-mapping agent. The model answers
// with a JSON object, which the caller parses strictly; model output is
// never evaluated as code.
const ColumnMappingSystem = `You are a data assistant that maps spreadsheet column headers onto a fixed schema. Respond with JSON only.`

// BuildColumnMapping renders the user prompt for mapping an SOA's original
// headers onto the four canonical names.
func BuildColumnMapping(headers []string) string {
	quoted := make([]string, len(headers))
	for i, h := range headers {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	return fmt.Sprintf(`Your task is to rename columns in a vendor Statement of Account (SOA) spreadsheet.

Map each original column to one of the following target names (use these names exactly):
- Date
- Invoice Number
- Amount
- Remaining Amount

Here is the list of original columns:
[%s]

Follow these strict rules:
1. Only return a valid JSON object of column mappings. No explanation or text outside the JSON.
2. Only include "Remaining Amount" in your mapping if the original columns clearly contain a second distinct amount-related column.
3. If there is only one amount column, map it to "Amount" only — do not include "Remaining Amount". Duplication is handled downstream.
4. Do not guess or make assumptions about missing fields. Only map what is clearly present.
5. Use each mapped column name only once.

Example (two amount columns):
{"Posting Date": "Date", "Ext Doc No": "Invoice Number", "Amount (LCY)": "Amount", "Remaining (LCY)": "Remaining Amount"}

Example (one amount column):
{"Posting Date": "Date", "Ext Doc No": "Invoice Number", "Amount (LCY)": "Amount"}`, strings.Join(quoted, ", "))
}

// RulesMessage is the usage help posted when a user asks for "rules".
const RulesMessage = `*Vendor Reconciliation Rules*

To run a reconciliation, follow these steps:

1. Upload two files:
   - One *vendor* file (include "vendor" in the file name)
   - One *SOA* file (include "soa" in the file name)

2. Add a keyword to indicate parsing mode:
   - clean — for structured SOA Excel files
   - dirty — for unstructured SOA Excel/PDF files (uses LLM extraction)

3. The service will:
   - Extract, compare, and reconcile invoices
   - Print matched, partially matched, and unmatched rows
   - Generate and save a filled Excel reconciliation sheet

Advanced (dirty mode only): any text on the line after "dirty" is passed
as contextual comments to the extractor. This helps when the SOA format
is messy.

If unsure, start with dirty mode — it is safer for unstructured files.`
