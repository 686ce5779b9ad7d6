package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultHuggingFaceModel is the hosted inference endpoint used for analysis.
const DefaultHuggingFaceModel = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.2"

// HuggingFaceClient calls the Hugging Face inference API.
type HuggingFaceClient struct {
	apiKey string
	url    string
	http   *http.Client
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFace creates a HuggingFaceClient. cfg.Model may be a full model
// URL; it defaults to DefaultHuggingFaceModel.
func NewHuggingFace(cfg Config) (*HuggingFaceClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: %w", ErrMissingAPIKey)
	}
	url := cfg.Model
	if url == "" {
		url = DefaultHuggingFaceModel
	}
	return &HuggingFaceClient{apiKey: cfg.APIKey, url: url, http: httpClient(cfg)}, nil
}

// Generate implements Generator.
func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   500,
			Temperature:    0.3,
			TopP:           0.9,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Provider: HuggingFace, Code: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
	return parseHFResponse(respBody)
}

// parseHFResponse accepts both the list and the single-object answer shapes.
func parseHFResponse(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []hfGeneration
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("unmarshal response: %w", err)
		}
		if len(list) == 0 {
			return "", fmt.Errorf("huggingface: empty generation list")
		}
		return list[0].GeneratedText, nil
	}
	var single hfGeneration
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return single.GeneratedText, nil
}
