package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docsift/internal/config"
	"docsift/internal/domain"
	"docsift/internal/llm"
	"docsift/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

func init() {
	llm.RegisterProvider("anthropic", func(cfg *config.LLMProviderConfig) (port.DocumentStructurer, error) {
		return NewStructurer(cfg), nil
	})
}

// Structurer implements port.DocumentStructurer using the Anthropic Messages API.
type Structurer struct {
	apiKey      string
	textModel   string
	visionModel string
	endpoint    string
	client      *http.Client
}

// NewStructurer creates an Anthropic-based document structurer from a provider config.
func NewStructurer(cfg *config.LLMProviderConfig) *Structurer {
	return newStructurer(cfg, apiURL)
}

// NewStructurerWithEndpoint creates a structurer pointing at a custom API endpoint (for testing).
func NewStructurerWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Structurer {
	return newStructurer(cfg, endpoint)
}

func newStructurer(cfg *config.LLMProviderConfig, endpoint string) *Structurer {
	textModel := cfg.TextModel
	if textModel == "" {
		textModel = "claude-sonnet-4-20250514"
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = textModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Structurer{
		apiKey:      cfg.APIKey,
		textModel:   textModel,
		visionModel: visionModel,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
	}
}

// StructureText extracts fields from page text using the text model.
func (s *Structurer) StructureText(ctx context.Context, input port.TextInput) (*port.StructuredResult, error) {
	content := []map[string]interface{}{
		{"type": "text", "text": llm.BuildTextPrompt(input.Text, input.DocumentTypeHint)},
	}
	return s.complete(ctx, s.textModel, content)
}

// StructureImage extracts fields directly from a page image using the vision model.
func (s *Structurer) StructureImage(ctx context.Context, input port.ImageInput) (*port.StructuredResult, error) {
	contentType, ok := domain.AllowedFileTypes[input.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported image format for structuring: %s", input.Format)
	}
	encoded := base64.StdEncoding.EncodeToString(input.Image)
	content := []map[string]interface{}{
		{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": contentType,
				"data":       encoded,
			},
		},
		{"type": "text", "text": llm.BuildVisionPrompt()},
	}
	return s.complete(ctx, s.visionModel, content)
}

func (s *Structurer) complete(ctx context.Context, model string, content []map[string]interface{}) (*port.StructuredResult, error) {
	reqBody := map[string]interface{}{
		"model":      model,
		"max_tokens": 8192,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "anthropic", Retryable: true, Err: fmt.Errorf("calling anthropic API: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "anthropic", Retryable: true, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, llm.NewRateLimitError("anthropic", baseErr, retryAfter)
		}
		return nil, llm.NewProviderError("anthropic", resp.StatusCode, baseErr)
	}

	return parseResponse(respBody, model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.StructuredResult, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	return llm.ParseResult(resp.Content[0].Text, model)
}
