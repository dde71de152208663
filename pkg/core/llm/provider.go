package llm

import (
	"context"
)

// Provider is the interface for all LLM providers used by the extraction
// agents.
type Provider interface {
	// GenerateResponse sends a plain text prompt.
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// GenerateWithDocument attaches a document (typically the SOA PDF) to
	// the request so the model can extract from it directly.
	GenerateWithDocument(ctx context.Context, document []byte, mimeType string, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
