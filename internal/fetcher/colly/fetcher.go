// Package collyfetcher implements crawler.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/metrics"
)

// Browser-like defaults. Several government portals reject obvious bot
// user agents.
const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout = 10 * time.Second

	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultAcceptLanguage = "en-US,en;q=0.9"
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
}

// Fetcher implements crawler.Fetcher. Each Fetch gets its own collector so
// concurrent source scrapes never share callbacks; connections are pooled
// through one transport.
type Fetcher struct {
	cfg    Config
	pooled http.RoundTripper
	robots *robotsFallback
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	pooled := pooledTransport()
	return &Fetcher{cfg: cfg, pooled: pooled, robots: newRobotsFallback(pooled)}
}

// attempt carries the state of one Fetch through the collector callbacks.
type attempt struct {
	req     crawler.FetchRequest
	started time.Time
	resp    crawler.FetchResponse
	err     error
}

func (a *attempt) onRequest(r *colly.Request) {
	r.Headers.Set("Accept", defaultAccept)
	r.Headers.Set("Accept-Language", defaultAcceptLanguage)
	// Caller headers replace the defaults wholesale, key by key.
	for key, values := range a.req.Headers {
		r.Headers.Del(key)
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}

func (a *attempt) onResponse(r *colly.Response) {
	a.resp = crawler.FetchResponse{
		URL:        r.Request.URL.String(),
		StatusCode: r.StatusCode,
		Headers:    r.Headers.Clone(),
		Body:       append([]byte(nil), r.Body...),
		Duration:   time.Since(a.started),
	}
}

func (a *attempt) onError(r *colly.Response, err error) {
	if r == nil || r.StatusCode == 0 {
		a.err = err
		return
	}
	a.err = fmt.Errorf("http status %d: %w", r.StatusCode, err)
}

// Fetch executes a single HTTP GET. Transport failures and non-2xx
// responses are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, request crawler.FetchRequest) (crawler.FetchResponse, error) {
	a := &attempt{req: request, started: time.Now()}
	c := f.collector(ctx, a)

	visited := make(chan error, 1)
	go func() { visited <- c.Visit(request.URL) }()

	select {
	case <-ctx.Done():
		return crawler.FetchResponse{}, fmt.Errorf("fetch %s canceled: %w", request.URL, ctx.Err())
	case err := <-visited:
		switch {
		case a.err != nil:
			return crawler.FetchResponse{}, fmt.Errorf("fetch %s: %w", request.URL, a.err)
		case err != nil:
			return crawler.FetchResponse{}, fmt.Errorf("visit %s: %w", request.URL, err)
		}
	}
	metrics.ObserveFetch(request.URL, a.resp.Duration, len(a.resp.Body))
	return a.resp, nil
}

func (f *Fetcher) collector(ctx context.Context, a *attempt) *colly.Collector {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(f.cfg.UserAgent),
	)
	c.IgnoreRobotsTxt = !f.cfg.RespectRobots
	if f.cfg.RespectRobots {
		c.WithTransport(f.robots)
	} else {
		c.WithTransport(f.pooled)
	}
	c.SetRequestTimeout(f.cfg.Timeout)
	c.OnRequest(a.onRequest)
	c.OnResponse(a.onResponse)
	c.OnError(a.onError)
	return c
}

func pooledTransport() *http.Transport {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}
}
