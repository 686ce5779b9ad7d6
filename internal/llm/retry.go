package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 10 * time.Second
)

type retryGenerator struct {
	inner      Generator
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// WithRetry retries transient failures (429, 5xx, timeouts) with exponential
// backoff. maxRetries counts retries after the first attempt, so 2 allows up to
// three calls; zero or less disables retries.
func WithRetry(gen Generator, maxRetries int, logger *zap.Logger) Generator {
	if maxRetries <= 0 {
		return gen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryGenerator{
		inner:      gen,
		maxRetries: maxRetries,
		baseDelay:  retryBaseDelay,
		logger:     logger.Named("llm"),
	}
}

func (r *retryGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		text, err := r.inner.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}

		delay := r.backoff(attempt)
		r.logger.Warn("generation failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", r.maxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("retry canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return "", lastErr
}

func (r *retryGenerator) backoff(attempt int) time.Duration {
	delay := r.baseDelay << attempt
	if delay <= 0 || delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
