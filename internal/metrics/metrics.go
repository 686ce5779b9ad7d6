// Package metrics exposes Prometheus collectors for the regwatch service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape outcomes recorded per source.
const (
	StatusOK      = "ok"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
	StatusBlocked = "blocked"
	StatusFeed    = "feed"
)

// Enrichment outcomes.
const (
	EnrichModel    = "model"
	EnrichFallback = "fallback"
)

var (
	sourceScrapesTotal         *prometheus.CounterVec
	itemsTotal                 *prometheus.CounterVec
	itemsFilteredTotal         prometheus.Counter
	fetchDurationSeconds       *prometheus.HistogramVec
	fetchBytesTotal            *prometheus.CounterVec
	enrichTotal                *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	robotsFallbackTotal        *prometheus.CounterVec
	rateLimitDelaysSeconds     *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors with the default registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourceScrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwatch_source_scrapes_total",
				Help: "Source scrape attempts, labeled by source and outcome.",
			},
			[]string{"source", "status"},
		)

		itemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwatch_items_total",
				Help: "Items extracted, labeled by source.",
			},
			[]string{"source"},
		)

		itemsFilteredTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "regwatch_items_filtered_total",
				Help: "Dated items dropped for falling outside the recency window.",
			},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regwatch_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by site.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"site"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwatch_fetch_bytes_total",
				Help: "Total number of bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		enrichTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwatch_enrich_total",
				Help: "Item analyses, labeled by whether the model or the fallback answered.",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"method", "route"},
		)

		robotsFallbackTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwatch_robots_fallback_total",
				Help: "Hosts whose robots.txt timed out and were treated as allow-all.",
			},
			[]string{"site"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regwatch_rate_limit_delays_seconds",
				Help:    "Histogram of per-host rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"domain"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from rawURL.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveScrape records one source scrape and the number of items it produced.
func ObserveScrape(source, status string, items int) {
	Init()
	sourceScrapesTotal.WithLabelValues(source, status).Inc()
	if items > 0 {
		itemsTotal.WithLabelValues(source).Add(float64(items))
	}
}

// ObserveFiltered records dated items dropped by the recency window.
func ObserveFiltered(n int) {
	Init()
	if n > 0 {
		itemsFilteredTotal.Add(float64(n))
	}
}

// ObserveFetch records a completed page fetch.
func ObserveFetch(rawURL string, duration time.Duration, bytesFetched int) {
	Init()
	site := SanitizeSite(rawURL)
	fetchDurationSeconds.WithLabelValues(site).Observe(duration.Seconds())
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
}

// ObserveEnrich records whether an analysis came from the model or the fallback.
func ObserveEnrich(outcome string) {
	Init()
	enrichTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveRobotsFallback records a host whose robots.txt fetch gave up.
func ObserveRobotsFallback(site string) {
	Init()
	robotsFallbackTotal.WithLabelValues(site).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// Middleware records request counts and latencies for chi routes.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ObserveHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
