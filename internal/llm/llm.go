// Package llm holds the text generation clients used for notice analysis and
// the regulatory news digest.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Provider names a text generation backend.
type Provider string

// Supported providers.
const (
	HuggingFace Provider = "huggingface"
	Gemini      Provider = "gemini"
)

// ErrMissingAPIKey is returned by constructors when no API key is configured.
var ErrMissingAPIKey = errors.New("llm: api key is not configured")

// Generator completes a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the settings shared by every client.
// Model is a full model URL for Hugging Face and a model ID for Gemini.
type Config struct {
	Provider   Provider
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// StatusError reports a non-2xx answer from a provider.
type StatusError struct {
	Provider Provider
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s api error (%d): %s", e.Provider, e.Code, e.Message)
}

// New builds the client for cfg.Provider wrapped with retries.
func New(cfg Config) (Generator, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case HuggingFace, "":
		gen, err = NewHuggingFace(cfg)
	case Gemini:
		gen, err = NewGemini(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(gen, cfg.MaxRetries, cfg.Logger), nil
}

func httpClient(cfg Config) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
