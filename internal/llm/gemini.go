package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Gemini defaults.
const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiClient calls the Gemini generateContent API.
type GeminiClient struct {
	apiKey string
	model  string
	base   string
	http   *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64         `json:"temperature"`
	MaxOutputTokens int             `json:"maxOutputTokens"`
	TopP            float64         `json:"topP"`
	TopK            int             `json:"topK"`
	ThinkingConfig  *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGemini creates a GeminiClient.
func NewGemini(cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		apiKey: cfg.APIKey,
		model:  model,
		base:   strings.TrimRight(base, "/"),
		http:   httpClient(cfg),
	}, nil
}

// Generate implements Generator.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.4,
			MaxOutputTokens: 1024,
			TopP:            0.95,
			TopK:            40,
			// Thinking tokens count against maxOutputTokens on 2.5 models.
			ThinkingConfig: &thinkingConfig{ThinkingBudget: 0},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.base, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var gResp geminiResponse
	decodeErr := json.Unmarshal(respBody, &gResp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if decodeErr == nil && gResp.Error != nil && gResp.Error.Message != "" {
			msg = gResp.Error.Message
		}
		return "", &StatusError{Provider: Gemini, Code: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("unmarshal response: %w", decodeErr)
	}
	if gResp.Error != nil {
		return "", &StatusError{Provider: Gemini, Code: gResp.Error.Code, Message: gResp.Error.Message}
	}
	if len(gResp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates in response, it may have been filtered")
	}

	candidate := gResp.Candidates[0]
	parts := make([]string, 0, len(candidate.Content.Parts))
	for _, p := range candidate.Content.Parts {
		parts = append(parts, p.Text)
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		reason := candidate.FinishReason
		if reason == "" {
			reason = "unknown"
		}
		return "", fmt.Errorf("gemini: empty text, finish reason %s", reason)
	}
	return text, nil
}
