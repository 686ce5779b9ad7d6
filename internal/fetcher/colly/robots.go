package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JakeFAU/regwatch/internal/metrics"
)

// permissiveRobots is served in place of a robots.txt that never arrived.
const permissiveRobots = "User-agent: *\nAllow: /"

// robotsBackoff is the wait before each retry of a robots.txt fetch.
var robotsBackoff = []time.Duration{
	250 * time.Millisecond,
	500 * time.Millisecond,
	time.Second,
}

// robotsFallback wraps a transport so that a government portal whose
// robots.txt keeps timing out is treated as allowing everything instead of
// failing the listing fetch behind it. Hosts that fell back are remembered
// and not fetched again.
type robotsFallback struct {
	next    http.RoundTripper
	backoff []time.Duration

	mu       sync.Mutex
	degraded map[string]struct{}
}

func newRobotsFallback(next http.RoundTripper) *robotsFallback {
	return &robotsFallback{
		next:     next,
		backoff:  robotsBackoff,
		degraded: make(map[string]struct{}),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *robotsFallback) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil || req.URL == nil {
		return nil, errors.New("robots fallback: request has no url")
	}
	if !strings.EqualFold(req.URL.Path, "/robots.txt") {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, fmt.Errorf("roundtrip %s: %w", req.URL.Host, err)
		}
		return resp, nil
	}

	host := strings.ToLower(req.URL.Host)
	if t.isDegraded(host) {
		return allowAll(req), nil
	}

	for attempt := 0; attempt <= len(t.backoff); attempt++ {
		if attempt > 0 {
			if err := wait(req.Context(), t.backoff[attempt-1]); err != nil {
				return nil, err
			}
		}
		resp, err := t.next.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			return resp, nil
		}
		if !timedOut(err) {
			return nil, fmt.Errorf("robots fetch %s: %w", host, err)
		}
	}

	t.markDegraded(host)
	metrics.ObserveRobotsFallback(host)
	return allowAll(req), nil
}

func (t *robotsFallback) isDegraded(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.degraded[host]
	return ok
}

func (t *robotsFallback) markDegraded(host string) {
	t.mu.Lock()
	t.degraded[host] = struct{}{}
	t.mu.Unlock()
}

func allowAll(req *http.Request) *http.Response {
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"text/plain"}},
		Body:          io.NopCloser(strings.NewReader(permissiveRobots)),
		ContentLength: int64(len(permissiveRobots)),
		Request:       req,
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("robots fetch backoff: %w", ctx.Err())
	}
}

// timedOut reports whether err looks like a slow handshake or read rather
// than a refusal.
func timedOut(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "handshake timeout")
}
