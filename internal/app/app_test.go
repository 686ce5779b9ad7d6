// Package app_test contains unit tests for the app package.
package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/app"
	"github.com/JakeFAU/regwatch/internal/config"
	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/mailer"
)

// baseConfig loads the defaults so every test starts from what a bare
// deployment would run with.
func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Decode(config.NewViper())
	require.NoError(t, err)
	cfg.HuggingFace.APIKey = ""
	cfg.Gemini.APIKey = ""
	cfg.SMTP.Host = ""
	return cfg
}

func TestNewApp_Defaults(t *testing.T) {
	cfg := baseConfig(t)

	a, err := app.NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.NotNil(t, a.GetLogger())
	assert.NotNil(t, a.GetScraper())
	assert.NotNil(t, a.GetAnalyzer())
	assert.Nil(t, a.GetDigest(), "digest needs a gemini key")
	assert.Nil(t, a.GetSender(), "email needs an smtp host")

	priority := a.PrioritySources()
	require.Len(t, priority, 5)
	names := make([]string, 0, len(priority))
	for _, src := range priority {
		names = append(names, src.Name)
	}
	assert.ElementsMatch(t, cfg.Scraper.PrioritySources, names)

	deps := a.APIDependencies()
	assert.Equal(t, priority, deps.Sources)
	assert.Nil(t, deps.Sender)
}

func TestNewApp_ExtraSourcesAndProviders(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Scraper.ExtraSources = []crawler.DataSource{{
		Name:     "PFRDA Circulars",
		URL:      "https://www.pfrda.org.in/circulars",
		Type:     crawler.SourceHTML,
		Category: "regulators",
	}}
	cfg.Scraper.PrioritySources = []string{"PFRDA Circulars", "RBI Notifications"}
	cfg.Enrich.Provider = "gemini"
	cfg.Gemini.APIKey = "test-key"
	cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: "2525", From: "alerts@example.com"}

	a, err := app.NewApp(cfg, nil)
	require.NoError(t, err)

	assert.NotNil(t, a.GetDigest())
	assert.IsType(t, &mailer.SMTPSender{}, a.GetSender())

	regulators := a.GetSources().ByCategory("regulators")
	require.NotEmpty(t, regulators)
	assert.Equal(t, "PFRDA Circulars", regulators[len(regulators)-1].Name)

	priority := a.PrioritySources()
	require.Len(t, priority, 2)
	assert.Equal(t, "RBI Notifications", priority[0].Name, "catalog order wins")
	assert.Equal(t, "PFRDA Circulars", priority[1].Name)
}

func TestNewApp_ProviderWithoutKeyFallsBack(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Enrich.Provider = "huggingface"

	a, err := app.NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, a.GetAnalyzer())
}

func TestNewApp_SMTPErrors(t *testing.T) {
	cfg := baseConfig(t)
	cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com"}

	_, err := app.NewApp(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp")
}

func TestApp_Close(t *testing.T) {
	a, err := app.NewApp(baseConfig(t), zap.NewNop())
	require.NoError(t, err)
	assert.NotPanics(t, a.Close)
}
