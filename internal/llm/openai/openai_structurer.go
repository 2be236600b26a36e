package openai

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
	apiURL = "https://api.openai.com/v1/chat/completions"
)

func init() {
	llm.RegisterProvider("openai", func(cfg *config.LLMProviderConfig) (port.DocumentStructurer, error) {
		return NewStructurer(cfg), nil
	})
}

// Structurer implements port.DocumentStructurer using the OpenAI Chat Completions API.
type Structurer struct {
	apiKey      string
	textModel   string
	visionModel string
	endpoint    string
	client      *http.Client
}

// NewStructurer creates an OpenAI-based document structurer from a provider config.
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
		textModel = "gpt-4o-mini"
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = "gpt-4o"
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
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, encoded)
	content := []map[string]interface{}{
		{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		},
		{"type": "text", "text": llm.BuildVisionPrompt()},
	}
	return s.complete(ctx, s.visionModel, content)
}

func (s *Structurer) complete(ctx context.Context, model string, content []map[string]interface{}) (*port.StructuredResult, error) {
	reqBody := map[string]interface{}{
		"model":                 model,
		"max_completion_tokens": 8192,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "openai", Retryable: true, Err: fmt.Errorf("calling openai API: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ProviderError{Provider: "openai", Retryable: true, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, llm.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, llm.NewProviderError("openai", resp.StatusCode, baseErr)
	}

	return parseResponse(respBody, model)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model string) (*port.StructuredResult, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return llm.ParseResult(resp.Choices[0].Message.Content, model)
}
