package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
)

// OpenAIProvider calls the OpenAI API directly over HTTP. Document-grounded
// requests upload the file first, reference it from a responses call, and
// delete it afterwards so nothing is retained server-side.
type OpenAIProvider struct {
	Model string // e.g. "gpt-4.1"
}

var _ Provider = (*OpenAIProvider)(nil)

const openAIBaseURL = "https://api.openai.com/v1"

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type responsesRequest struct {
	Model string          `json:"model"`
	Input []responseInput `json:"input"`
	Store bool            `json:"store"`
}

type responseInput struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (p *OpenAIProvider) model(options map[string]interface{}) string {
	model := p.Model
	if model == "" {
		model = "gpt-4.1"
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}
	return model
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY_MISSING: Please set OPENAI_API_KEY env var")
	}

	reqBody := chatRequest{
		Model: p.model(options),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("OPENAI_MARSHAL_ERROR: %v", err)
	}

	body, err := p.do(ctx, apiKey, "POST", openAIBaseURL+"/chat/completions", "application/json", bytes.NewReader(jsonBytes))
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("OPENAI_UNMARSHAL_ERROR: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("OPENAI_NO_CHOICES: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) GenerateWithDocument(ctx context.Context, document []byte, mimeType string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY_MISSING: Please set OPENAI_API_KEY env var")
	}

	fileID, err := p.uploadFile(ctx, apiKey, document, mimeType)
	if err != nil {
		return "", err
	}
	// Remove the uploaded file regardless of outcome.
	defer p.deleteFile(context.WithoutCancel(ctx), apiKey, fileID)

	parts := []contentPart{
		{Type: "input_file", FileID: fileID},
		{Type: "input_text", Text: prompt},
	}
	if comments, ok := options["user_comments"].(string); ok && comments != "" {
		parts = append(parts, contentPart{Type: "input_text", Text: "Additional context: " + comments})
	}

	reqBody := responsesRequest{
		Model: p.model(options),
		Input: []responseInput{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: parts},
		},
		Store: false,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("OPENAI_MARSHAL_ERROR: %v", err)
	}

	body, err := p.do(ctx, apiKey, "POST", openAIBaseURL+"/responses", "application/json", bytes.NewReader(jsonBytes))
	if err != nil {
		return "", err
	}

	var response responsesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("OPENAI_UNMARSHAL_ERROR: %v", err)
	}
	for _, out := range response.Output {
		for _, c := range out.Content {
			if c.Type == "output_text" {
				return c.Text, nil
			}
		}
	}
	return "", fmt.Errorf("OPENAI_NO_OUTPUT: %s", string(body))
}

// uploadFile pushes the document to the files endpoint with purpose
// "user_data" and returns its ID.
func (p *OpenAIProvider) uploadFile(ctx context.Context, apiKey string, document []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("purpose", "user_data"); err != nil {
		return "", fmt.Errorf("OPENAI_UPLOAD_ERROR: %v", err)
	}
	name := "document.pdf"
	if mimeType != "application/pdf" {
		name = "document"
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("OPENAI_UPLOAD_ERROR: %v", err)
	}
	if _, err := part.Write(document); err != nil {
		return "", fmt.Errorf("OPENAI_UPLOAD_ERROR: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("OPENAI_UPLOAD_ERROR: %v", err)
	}

	body, err := p.do(ctx, apiKey, "POST", openAIBaseURL+"/files", writer.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &uploaded); err != nil || uploaded.ID == "" {
		return "", fmt.Errorf("OPENAI_UPLOAD_ERROR: unexpected response %s", string(body))
	}
	fmt.Printf("[llm] uploaded document to OpenAI: %s\n", uploaded.ID)
	return uploaded.ID, nil
}

func (p *OpenAIProvider) deleteFile(ctx context.Context, apiKey, fileID string) {
	if _, err := p.do(ctx, apiKey, "DELETE", openAIBaseURL+"/files/"+fileID, "", nil); err != nil {
		fmt.Printf("[llm] warning: failed to delete uploaded file %s: %v\n", fileID, err)
	}
}

func (p *OpenAIProvider) do(ctx context.Context, apiKey, method, url, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_REQ_CREATE_ERROR: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("OPENAI_API_ERROR: status=%d body=%s", res.StatusCode, string(respBody))
	}
	return respBody, nil
}
