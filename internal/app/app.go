// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/api"
	"github.com/JakeFAU/regwatch/internal/config"
	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/enrich"
	collyfetcher "github.com/JakeFAU/regwatch/internal/fetcher/colly"
	"github.com/JakeFAU/regwatch/internal/llm"
	"github.com/JakeFAU/regwatch/internal/mailer"
	"github.com/JakeFAU/regwatch/internal/policy/ratelimit"
	"github.com/JakeFAU/regwatch/internal/scraper"
	"github.com/JakeFAU/regwatch/internal/source"
)

// App holds all the shared, long-lived services for the application.
// It is built once at startup; the CLI and the HTTP server both read from it.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	sources  *source.Registry
	scraper  *scraper.Scraper
	analyzer *enrich.Analyzer
	digest   llm.Generator
	composer *mailer.Composer
	sender   mailer.Sender
}

// GetLogger returns the shared zap logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetConfig returns the configuration the app was built from.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetSources returns the catalog, including any configured extra sources.
func (a *App) GetSources() *source.Registry {
	return a.sources
}

// GetScraper returns the scrape orchestrator.
func (a *App) GetScraper() *scraper.Scraper {
	return a.scraper
}

// GetAnalyzer returns the enrichment adapter. It always exists; without a
// model it answers with heuristics.
func (a *App) GetAnalyzer() *enrich.Analyzer {
	return a.analyzer
}

// GetDigest returns the news digest generator, or nil without a Gemini key.
func (a *App) GetDigest() llm.Generator {
	return a.digest
}

// GetSender returns the email sender, or nil without an SMTP host.
func (a *App) GetSender() mailer.Sender {
	return a.sender
}

// PrioritySources resolves the configured priority names against the catalog.
func (a *App) PrioritySources() []crawler.DataSource {
	return a.sources.ByNames(a.cfg.Scraper.PrioritySources)
}

// APIDependencies bundles what the HTTP server needs.
func (a *App) APIDependencies() api.Dependencies {
	return api.Dependencies{
		Aggregator: a.scraper,
		Sources:    a.PrioritySources(),
		Analyzer:   a.analyzer,
		Digest:     a.digest,
		Composer:   a.composer,
		Sender:     a.sender,
	}
}

// NewApp wires every service from cfg. Missing model keys are not fatal:
// analysis falls back to heuristics and the digest is disabled. A broken
// SMTP section is.
func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := logger.Named("app")
	l.Info("Initializing application services...")

	sources := source.New(append(source.All(), cfg.Scraper.ExtraSources...)...)

	// 1. Fetch pipeline
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Scraper.UserAgent,
		RespectRobots: cfg.Scraper.RespectRobots,
		Timeout:       cfg.FetchTimeout(),
	})
	opts := scraper.Options{
		Fetcher:        fetcher,
		Limiter:        ratelimit.New(ratelimit.Config{RPS: cfg.Scraper.RateLimitRPS, Burst: 1}),
		Logger:         logger,
		BlockedDomains: cfg.Scraper.BlockedDomains,
	}
	if cfg.Scraper.RSSFallback {
		opts.Feeds = scraper.NewFeedReader(fetcher)
	}

	// 2. Text generation
	analysisGen, err := buildGenerator(cfg, llm.Provider(cfg.Enrich.Provider), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.Enrich.Provider, err)
	}
	if analysisGen == nil {
		l.Warn("No model configured for analysis; using heuristic action items",
			zap.String("provider", cfg.Enrich.Provider))
	}
	digestGen, err := buildGenerator(cfg, llm.Gemini, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	if digestGen == nil {
		l.Warn("Gemini API key not set; news digest disabled")
	}

	// 3. Email
	var sender mailer.Sender
	if cfg.SMTP.Host != "" {
		smtpSender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
			TLSMode:  cfg.SMTP.TLSMode,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize smtp sender: %w", err)
		}
		sender = smtpSender
		l.Info("Using SMTP email delivery", zap.String("host", cfg.SMTP.Host))
	} else {
		l.Warn("SMTP host not set; email delivery disabled")
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		sources: sources,
		scraper: scraper.New(opts),
		analyzer: enrich.New(enrich.Options{
			Generator:  analysisGen,
			BatchSize:  cfg.Enrich.BatchSize,
			BatchPause: cfg.BatchPause(),
			Logger:     logger,
		}),
		digest:   digestGen,
		composer: mailer.NewComposer(cfg.Server.PublicURL),
		sender:   sender,
	}
	l.Info("Application services initialized successfully.",
		zap.Int("sources", len(sources.All())),
		zap.Int("priority_sources", len(a.PrioritySources())),
	)
	return a, nil
}

// buildGenerator returns nil, nil when the provider is disabled or has no key.
func buildGenerator(cfg config.Config, provider llm.Provider, logger *zap.Logger) (llm.Generator, error) {
	llmCfg := llm.Config{
		Provider:   provider,
		MaxRetries: cfg.Enrich.MaxRetries,
		Logger:     logger,
	}
	if cfg.Enrich.TimeoutSeconds > 0 {
		llmCfg.Timeout = time.Duration(cfg.Enrich.TimeoutSeconds) * time.Second
	}
	switch provider {
	case llm.HuggingFace:
		llmCfg.APIKey = cfg.HuggingFace.APIKey
		llmCfg.Model = cfg.HuggingFace.ModelURL
	case llm.Gemini:
		llmCfg.APIKey = cfg.Gemini.APIKey
		llmCfg.Model = cfg.Gemini.ModelID
		llmCfg.BaseURL = cfg.Gemini.BaseURL
	default:
		return nil, nil
	}
	gen, err := llm.New(llmCfg)
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

// Close flushes the logger. It is called by a Cobra hook after the command
// finishes.
func (a *App) Close() {
	a.logger.Info("Shutting down application services...")
	// Sync on a console logger can fail with ENOTTY; nothing to do about it.
	_ = a.logger.Sync()
}
