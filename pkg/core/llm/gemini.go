package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider on Google's Gemini models via the
// official GenAI SDK.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash"
}

var _ Provider = (*GeminiProvider)(nil)

func (p *GeminiProvider) client(ctx context.Context) (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

func (p *GeminiProvider) modelName(options map[string]interface{}) string {
	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}
	return model
}

func (p *GeminiProvider) config(systemPrompt string, options map[string]interface{}) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	if val, ok := options["response_format"].(map[string]interface{}); ok {
		if val["type"] == "json_object" {
			config.ResponseMIMEType = "application/json"
		}
	} else if strings.Contains(strings.ToLower(systemPrompt), "json") {
		config.ResponseMIMEType = "application/json"
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}
	return config
}

func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	result, err := client.Models.GenerateContent(
		ctx,
		p.modelName(options),
		genai.Text(prompt),
		p.config(systemPrompt, options),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}

// GenerateWithDocument sends the document inline alongside the prompt.
// Gemini accepts PDFs directly, so no separate upload round-trip is needed.
func (p *GeminiProvider) GenerateWithDocument(ctx context.Context, document []byte, mimeType string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{Data: document, MIMEType: mimeType}},
		{Text: prompt},
	}
	if comments, ok := options["user_comments"].(string); ok && comments != "" {
		parts = append(parts, &genai.Part{Text: "Additional context: " + comments})
	}

	result, err := client.Models.GenerateContent(
		ctx,
		p.modelName(options),
		[]*genai.Content{{Parts: parts, Role: "user"}},
		p.config(systemPrompt, options),
	)
	if err != nil {
		return "", fmt.Errorf("gemini document generation failed: %w", err)
	}
	return result.Text(), nil
}
