// Package config loads and validates regwatch configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

// EnvPrefix is prepended to every environment override, e.g.
// REGWATCH_SCRAPER_FILTER_DAYS=7.
const EnvPrefix = "REGWATCH"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Scraper     ScraperConfig     `mapstructure:"scraper"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Enrich      EnrichConfig      `mapstructure:"enrich"`
	HuggingFace HuggingFaceConfig `mapstructure:"huggingface"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	PublicURL              string `mapstructure:"public_url"`
}

// AuthConfig protects the mutating endpoints with an API key.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// ScraperConfig governs fetching and aggregation.
type ScraperConfig struct {
	UserAgent         string   `mapstructure:"user_agent"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds"`
	MaxItemsPerSource int      `mapstructure:"max_items_per_source"`
	FilterDays        int      `mapstructure:"filter_days"`
	PrioritySources   []string `mapstructure:"priority_sources"`
	Categories        []string `mapstructure:"categories"`
	BlockedDomains    []string `mapstructure:"blocked_domains"`
	RateLimitRPS      float64  `mapstructure:"rate_limit_rps"`
	RespectRobots     bool     `mapstructure:"respect_robots"`
	RSSFallback       bool     `mapstructure:"rss_fallback"`
	// ExtraSources are appended to the built-in catalog.
	ExtraSources []crawler.DataSource `mapstructure:"extra_sources"`
}

// CacheConfig sets the lifetime of cached item lists.
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// EnrichConfig controls AI analysis.
type EnrichConfig struct {
	Provider       string `mapstructure:"provider"`
	BatchSize      int    `mapstructure:"batch_size"`
	BatchPauseMs   int    `mapstructure:"batch_pause_ms"`
	MaxRetries     int    `mapstructure:"max_retries"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// HuggingFaceConfig holds inference API credentials.
type HuggingFaceConfig struct {
	APIKey   string `mapstructure:"api_key"`
	ModelURL string `mapstructure:"model_url"`
}

// GeminiConfig holds generateContent API credentials.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	ModelID string `mapstructure:"model_id"`
	BaseURL string `mapstructure:"base_url"`
}

// SMTPConfig holds mail delivery settings. Email is disabled without a host.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	TLSMode  string `mapstructure:"tls_mode"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return Decode(v)
}

// NewViper returns a Viper instance with the environment binding and every
// default registered.
func NewViper() *viper.Viper {
	v := viper.New()
	Bind(v)
	return v
}

// Bind attaches the environment prefix and defaults to an existing Viper,
// typically the global one used by the CLI.
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
}

// Decode unmarshals and validates whatever v has loaded.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.public_url", "")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("scraper.user_agent", "")
	v.SetDefault("scraper.timeout_seconds", 10)
	v.SetDefault("scraper.max_items_per_source", 4)
	v.SetDefault("scraper.filter_days", 14)
	v.SetDefault("scraper.priority_sources", []string{
		"Income Tax Notifications",
		"RBI Notifications",
		"CBIC GST",
		"SEBI Circulars",
		"Maharashtra GST Notifications",
	})
	v.SetDefault("scraper.categories", []string{})
	v.SetDefault("scraper.blocked_domains", []string{})
	v.SetDefault("scraper.rate_limit_rps", 1.0)
	v.SetDefault("scraper.respect_robots", false)
	v.SetDefault("scraper.rss_fallback", true)
	v.SetDefault("cache.ttl_seconds", 900)
	v.SetDefault("enrich.provider", "huggingface")
	v.SetDefault("enrich.batch_size", 3)
	v.SetDefault("enrich.batch_pause_ms", 1000)
	v.SetDefault("enrich.max_retries", 2)
	v.SetDefault("enrich.timeout_seconds", 30)
	v.SetDefault("huggingface.api_key", "")
	v.SetDefault("huggingface.model_url", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_id", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.from_name", "regwatch")
	v.SetDefault("smtp.tls_mode", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds must be > 0")
	}
	if c.Scraper.MaxItemsPerSource <= 0 {
		return fmt.Errorf("scraper.max_items_per_source must be > 0")
	}
	if c.Scraper.FilterDays <= 0 {
		return fmt.Errorf("scraper.filter_days must be > 0")
	}
	if c.Scraper.RateLimitRPS < 0 {
		return fmt.Errorf("scraper.rate_limit_rps must be >= 0")
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0")
	}
	if c.Enrich.BatchSize <= 0 {
		return fmt.Errorf("enrich.batch_size must be > 0")
	}
	if c.Enrich.BatchPauseMs < 0 {
		return fmt.Errorf("enrich.batch_pause_ms must be >= 0")
	}
	if c.Enrich.MaxRetries < 0 {
		return fmt.Errorf("enrich.max_retries must be >= 0")
	}
	switch c.Enrich.Provider {
	case "huggingface", "gemini", "none":
	default:
		return fmt.Errorf("enrich.provider must be one of huggingface, gemini, none; got %q", c.Enrich.Provider)
	}
	for i, src := range c.Scraper.ExtraSources {
		if src.Name == "" || src.URL == "" {
			return fmt.Errorf("scraper.extra_sources[%d] needs a name and url", i)
		}
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("smtp.from must be set when smtp.host is configured")
	}
	return nil
}

// FetchTimeout is the per-page fetch budget.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// CacheTTL is how long a scraped item list is served from memory.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// BatchPause is the delay between enrichment batches.
func (c Config) BatchPause() time.Duration {
	return time.Duration(c.Enrich.BatchPauseMs) * time.Millisecond
}
