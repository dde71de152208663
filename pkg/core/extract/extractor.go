package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"vendor_recon/pkg/core/agent"
	"vendor_recon/pkg/core/ingest"
	"vendor_recon/pkg/core/normalize"
	"vendor_recon/pkg/core/prompt"
	"vendor_recon/pkg/core/utils"
)

// ServiceError wraps a failure of an external extraction service. The
// pipeline refuses to proceed with matching when the canonical schema or
// the claimed total cannot be established.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// PromptRunner is the slice of the agent manager the extractor needs.
type PromptRunner interface {
	ExecutePrompt(ctx context.Context, agentType string, prompt string, systemPrompt string) (string, error)
	ExecuteDocumentPrompt(ctx context.Context, agentType string, document []byte, mimeType string, prompt string, systemPrompt string, userComments string) (string, error)
}

var _ PromptRunner = (*agent.Manager)(nil)

// Extractor runs the three SOA extraction agents through the provider
// manager.
type Extractor struct {
	agents PromptRunner
}

func NewExtractor(agents PromptRunner) *Extractor {
	return &Extractor{agents: agents}
}

// ExtractInvoiceTable asks the table-extraction agent for the SOA's
// invoice table as a markdown pipe table, then parses it. userComments is
// optional operator context for messy documents.
func (e *Extractor) ExtractInvoiceTable(ctx context.Context, document []byte, mimeType string, userComments string) (*ingest.RawTable, error) {
	out, err := e.agents.ExecuteDocumentPrompt(ctx, "table_extractor", document, mimeType,
		"Extract all invoice numbers, dates, amounts and show total at bottom as table only.",
		prompt.TableExtraction, userComments)
	if err != nil {
		return nil, &ServiceError{Service: "table_extractor", Err: err}
	}

	cleaned := utils.CleanMarkdown(out)
	if !utils.ValidateMarkdown(cleaned) {
		return nil, &ServiceError{Service: "table_extractor", Err: fmt.Errorf("output carries no table content")}
	}

	tbl, err := ParseMarkdownTable(cleaned)
	if err != nil {
		return nil, &ServiceError{Service: "table_extractor", Err: err}
	}
	fmt.Printf("[extract] parsed %d invoice rows from extraction output\n", len(tbl.Rows))
	return tbl, nil
}

// ExtractClaimedTotal asks the total-extraction agent for the vendor's
// claimed total as a bare decimal number.
func (e *Extractor) ExtractClaimedTotal(ctx context.Context, document []byte, mimeType string) (float64, error) {
	out, err := e.agents.ExecuteDocumentPrompt(ctx, "total_extractor", document, mimeType,
		"Extract only the claimed total amount.", prompt.ClaimedTotal, "")
	if err != nil {
		return 0, &ServiceError{Service: "total_extractor", Err: err}
	}

	cleaned := strings.TrimSpace(out)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")
	total, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ServiceError{Service: "total_extractor", Err: fmt.Errorf("expected a bare number, got %q", out)}
	}
	return total, nil
}

// MapColumns asks the column-mapping agent to map the SOA's original
// headers onto the canonical names. The model's answer is parsed as strict
// JSON (with repair fallbacks) and validated: only known target names, each
// used once.
func (e *Extractor) MapColumns(ctx context.Context, headers []string) (map[string]string, error) {
	out, err := e.agents.ExecutePrompt(ctx, "column_mapper",
		prompt.BuildColumnMapping(headers), prompt.ColumnMappingSystem)
	if err != nil {
		return nil, &ServiceError{Service: "column_mapper", Err: err}
	}

	mapping := map[string]string{}
	if _, err := utils.SmartParse(utils.CleanMarkdown(out), &mapping); err != nil {
		return nil, &ServiceError{Service: "column_mapper", Err: fmt.Errorf("unparseable mapping %q: %w", out, err)}
	}

	if err := validateMapping(mapping); err != nil {
		return nil, &ServiceError{Service: "column_mapper", Err: err}
	}
	return mapping, nil
}

var canonicalTargets = map[string]bool{
	normalize.ColDate:      true,
	normalize.ColInvoice:   true,
	normalize.ColAmount:    true,
	normalize.ColRemaining: true,
}

func validateMapping(mapping map[string]string) error {
	seen := map[string]string{}
	for src, target := range mapping {
		if !canonicalTargets[target] {
			return fmt.Errorf("mapping contains unknown target column %q", target)
		}
		if prev, dup := seen[target]; dup {
			return fmt.Errorf("target column %q mapped from both %q and %q", target, prev, src)
		}
		seen[target] = src
	}
	return nil
}
