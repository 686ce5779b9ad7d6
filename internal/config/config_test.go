package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  public_url: https://regwatch.example
auth:
  enabled: true
  api_key: secret
scraper:
  timeout_seconds: 20
  max_items_per_source: 6
  filter_days: 30
  priority_sources: ["RBI Notifications"]
  blocked_domains: ["*.example.org"]
  respect_robots: true
  extra_sources:
    - name: IRDAI Circulars
      url: https://irdai.gov.in/circulars
      type: html
      category: central
cache:
  ttl_seconds: 60
enrich:
  provider: gemini
  batch_size: 5
  batch_pause_ms: 250
gemini:
  api_key: g-key
smtp:
  host: smtp.example.com
  from: alerts@example.com
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.PublicURL != "https://regwatch.example" {
		t.Fatalf("expected server overrides, got %+v", cfg.Server)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatalf("expected auth enabled with secret key")
	}
	if cfg.Scraper.MaxItemsPerSource != 6 || cfg.Scraper.FilterDays != 30 || !cfg.Scraper.RespectRobots {
		t.Fatalf("expected scraper overrides to apply: %+v", cfg.Scraper)
	}
	if len(cfg.Scraper.PrioritySources) != 1 || cfg.Scraper.PrioritySources[0] != "RBI Notifications" {
		t.Fatalf("expected priority override, got %v", cfg.Scraper.PrioritySources)
	}
	if len(cfg.Scraper.ExtraSources) != 1 || cfg.Scraper.ExtraSources[0].Name != "IRDAI Circulars" ||
		cfg.Scraper.ExtraSources[0].Category != "central" {
		t.Fatalf("expected extra source to be loaded: %+v", cfg.Scraper.ExtraSources)
	}
	if got := cfg.FetchTimeout(); got != 20*time.Second {
		t.Fatalf("expected fetch timeout 20s, got %v", got)
	}
	if got := cfg.CacheTTL(); got != time.Minute {
		t.Fatalf("expected cache ttl 1m, got %v", got)
	}
	if got := cfg.BatchPause(); got != 250*time.Millisecond {
		t.Fatalf("expected batch pause 250ms, got %v", got)
	}
	if cfg.Enrich.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("expected gemini enrichment, got %+v / %+v", cfg.Enrich, cfg.Gemini)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected development logging disabled")
	}
	// untouched keys keep their defaults
	if cfg.SMTP.Port != "587" || cfg.SMTP.FromName != "regwatch" {
		t.Fatalf("expected smtp defaults, got %+v", cfg.SMTP)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scraper.MaxItemsPerSource != 4 || cfg.Scraper.FilterDays != 14 {
		t.Fatalf("unexpected scraper defaults: %+v", cfg.Scraper)
	}
	if len(cfg.Scraper.PrioritySources) != 5 {
		t.Fatalf("expected five priority sources, got %v", cfg.Scraper.PrioritySources)
	}
	if got := cfg.CacheTTL(); got != 15*time.Minute {
		t.Fatalf("expected 15m cache ttl, got %v", got)
	}
	if cfg.Enrich.BatchSize != 3 || cfg.BatchPause() != time.Second || cfg.Enrich.MaxRetries != 2 {
		t.Fatalf("unexpected enrich defaults: %+v", cfg.Enrich)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REGWATCH_SCRAPER_FILTER_DAYS", "7")
	t.Setenv("REGWATCH_ENRICH_PROVIDER", "none")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scraper.FilterDays != 7 {
		t.Fatalf("expected env override to 7 days, got %d", cfg.Scraper.FilterDays)
	}
	if cfg.Enrich.Provider != "none" {
		t.Fatalf("expected provider none, got %q", cfg.Enrich.Provider)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:  ServerConfig{Port: 8080},
		Scraper: ScraperConfig{TimeoutSeconds: 10, MaxItemsPerSource: 4, FilterDays: 14},
		Enrich:  EnrichConfig{Provider: "huggingface", BatchSize: 3},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"invalid timeout", func(c *Config) { c.Scraper.TimeoutSeconds = 0 }, "scraper.timeout_seconds"},
		{"invalid cap", func(c *Config) { c.Scraper.MaxItemsPerSource = 0 }, "scraper.max_items_per_source"},
		{"invalid window", func(c *Config) { c.Scraper.FilterDays = -1 }, "scraper.filter_days"},
		{"negative rate", func(c *Config) { c.Scraper.RateLimitRPS = -1 }, "scraper.rate_limit_rps"},
		{"negative ttl", func(c *Config) { c.Cache.TTLSeconds = -5 }, "cache.ttl_seconds"},
		{"invalid batch", func(c *Config) { c.Enrich.BatchSize = 0 }, "enrich.batch_size"},
		{"negative retries", func(c *Config) { c.Enrich.MaxRetries = -1 }, "enrich.max_retries"},
		{"unknown provider", func(c *Config) { c.Enrich.Provider = "openai" }, "enrich.provider"},
		{"auth missing api key", func(c *Config) { c.Auth.Enabled = true }, "auth.api_key"},
		{"smtp missing from", func(c *Config) { c.SMTP.Host = "smtp.example.com" }, "smtp.from"},
		{
			"extra source missing url",
			func(c *Config) {
				c.Scraper.ExtraSources = append(c.Scraper.ExtraSources, crawlerSource("IRDAI", ""))
			},
			"scraper.extra_sources[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func crawlerSource(name, url string) crawler.DataSource {
	return crawler.DataSource{Name: name, URL: url, Type: crawler.SourceHTML}
}
