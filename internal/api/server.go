package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/clock/system"
	"github.com/JakeFAU/regwatch/internal/config"
	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/enrich"
	"github.com/JakeFAU/regwatch/internal/llm"
	"github.com/JakeFAU/regwatch/internal/mailer"
	"github.com/JakeFAU/regwatch/internal/metrics"
)

const noStore = "no-store, no-cache, must-revalidate, proxy-revalidate"

// ItemAnalyzer turns a notice into action items. It never fails.
type ItemAnalyzer interface {
	Analyze(ctx context.Context, title, source, date string) enrich.ActionItems
}

// Dependencies are the collaborators behind the routes. Digest and Sender
// may be nil, which disables the digest and email routes respectively.
type Dependencies struct {
	Aggregator Aggregator
	Sources    []crawler.DataSource
	Analyzer   ItemAnalyzer
	Digest     llm.Generator
	Composer   *mailer.Composer
	Sender     mailer.Sender
	Clock      crawler.Clock
}

// Server wires HTTP handlers to the scraper and its collaborators.
type Server struct {
	router   chi.Router
	feed     *itemFeed
	analyzer ItemAnalyzer
	digest   llm.Generator
	composer *mailer.Composer
	sender   mailer.Sender
	cfg      config.Config
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Dependencies, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")
	clock := deps.Clock
	if clock == nil {
		clock = system.New()
	}
	analyzer := deps.Analyzer
	if analyzer == nil {
		analyzer = enrich.New(enrich.Options{Logger: logger})
	}
	composer := deps.Composer
	if composer == nil {
		composer = mailer.NewComposer(cfg.Server.PublicURL)
	}
	timeout := time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	s := &Server{
		feed: newItemFeed(
			deps.Aggregator,
			deps.Sources,
			cfg.Scraper.MaxItemsPerSource,
			cfg.Scraper.FilterDays,
			cfg.CacheTTL(),
			timeout,
			clock,
			logger,
		),
		analyzer: analyzer,
		digest:   deps.Digest,
		composer: composer,
		sender:   deps.Sender,
		cfg:      cfg,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(s.accessLog)
	r.Use(s.recoverPanics)
	r.Use(metrics.Middleware)
	r.Use(withTimeout(timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(requireAPIKey(cfg.Auth.APIKey))
		}
		r.Get("/items", s.getItems)
		r.Post("/analyze", s.analyze)
		r.Post("/email", s.sendEmail)
		r.Get("/digest", s.getDigest)
		r.Post("/digest", s.getDigest)
		r.Get("/cron/scrape", s.cronScrape)
		r.Post("/cron/scrape", s.cronScrape)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The service holds no connections; a catalog is all it needs.
	if len(s.feed.sources) == 0 {
		writeError(w, http.StatusServiceUnavailable, "no sources configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
