package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "regwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scraper:\n  filter_days: 3\n"), 0o600))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, used)
	require.Equal(t, 3, cfg.Scraper.FilterDays)
	require.Equal(t, 4, cfg.Scraper.MaxItemsPerSource)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, used, err := Load("")
	require.NoError(t, err)
	require.Empty(t, used)
	require.Equal(t, 14, cfg.Scraper.FilterDays)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enrich:\n  provider: openai\n"), 0o600))

	_, _, err := Load(path)
	require.ErrorContains(t, err, "enrich.provider")
}
