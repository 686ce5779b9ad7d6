// Package cmd defines and implements the CLI commands for the regwatch executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/api"
	"github.com/JakeFAU/regwatch/internal/app"
	"github.com/JakeFAU/regwatch/internal/config"
	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/enrich"
	"github.com/JakeFAU/regwatch/internal/llm"
	"github.com/JakeFAU/regwatch/internal/logging"
	"github.com/JakeFAU/regwatch/internal/scraper"
	"github.com/JakeFAU/regwatch/internal/source"
	pkgconfig "github.com/JakeFAU/regwatch/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a different app during tests.
type App interface {
	Close()
	GetLogger() *zap.Logger
	GetConfig() config.Config
	GetSources() *source.Registry
	GetScraper() *scraper.Scraper
	GetAnalyzer() *enrich.Analyzer
	GetDigest() llm.Generator
	PrioritySources() []crawler.DataSource
	APIDependencies() api.Dependencies
}

// newApp is the application factory. It's a variable so tests can swap it.
var newApp = func(cfg config.Config, logger *zap.Logger) (App, error) {
	return app.NewApp(cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regwatch",
		Short: "Aggregates Indian tax and financial regulatory notices.",
		Long: `regwatch scrapes government and regulator sites (CBDT, CBIC, RBI, SEBI,
Maharashtra GST and others), normalizes their notices, keeps the recent ones
and optionally asks a language model what each notice means for the reader.`,
		SilenceUsage: true,

		// Config is loaded here, after flags are parsed, so bound flags win
		// over the file and environment.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, used, err := pkgconfig.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			if used == "" {
				logger.Warn("Config file not found; using defaults and environment variables.")
			} else {
				logger.Info("Using config file", zap.String("path", used))
			}

			appInstance, err := newApp(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.regwatch/config.yaml)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSourcesCmd())
	cmd.AddCommand(newDigestCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
