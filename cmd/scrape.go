package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/dates"
	"github.com/JakeFAU/regwatch/internal/enrich"
)

// scrapedRecord is one line of scrape output; action items are present only
// with --analyze.
type scrapedRecord struct {
	crawler.ScrapedItem
	ActionItems *enrich.ActionItems `json:"actionItems,omitempty"`
}

// newScrapeCmd creates the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes sources once and prints recent notices as JSON",
		Long: `Scrapes the priority sources (or the sources selected with --category or
--source), keeps notices inside the recency window and prints them newest
first as a JSON array. With --analyze each notice also carries action items.`,
		RunE: runScrapeCommand,
	}
	cmd.Flags().StringSlice("category", nil, "limit to these source categories")
	cmd.Flags().StringSlice("source", nil, "limit to these source names")
	cmd.Flags().Int("max", 0, "maximum items per source (default from config)")
	cmd.Flags().Int("days", 0, "recency window in days (default from config)")
	cmd.Flags().Bool("analyze", false, "attach AI action items to every notice")

	// Bound flags override the config file only when set.
	_ = viper.BindPFlag("scraper.categories", cmd.Flags().Lookup("category"))
	_ = viper.BindPFlag("scraper.max_items_per_source", cmd.Flags().Lookup("max"))
	_ = viper.BindPFlag("scraper.filter_days", cmd.Flags().Lookup("days"))
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.GetConfig()
	logger := appInstance.GetLogger()

	names, err := cmd.Flags().GetStringSlice("source")
	if err != nil {
		return fmt.Errorf("read --source: %w", err)
	}
	analyze, err := cmd.Flags().GetBool("analyze")
	if err != nil {
		return fmt.Errorf("read --analyze: %w", err)
	}

	sources := appInstance.PrioritySources()
	if len(names) > 0 || len(cfg.Scraper.Categories) > 0 {
		sources = appInstance.GetSources().Select(cfg.Scraper.Categories, names)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources match the selection")
	}

	items := appInstance.GetScraper().ScrapeMultiple(
		cmd.Context(),
		sources,
		cfg.Scraper.MaxItemsPerSource,
		cfg.Scraper.FilterDays,
	)
	items = dates.SortByDate(items, true)
	logger.Info("Scrape command finished.", zap.Int("sources", len(sources)), zap.Int("items", len(items)))

	var analyses map[enrich.Key]enrich.ActionItems
	if analyze {
		analyses = appInstance.GetAnalyzer().AnalyzeBatch(cmd.Context(), items)
	}

	records := make([]scrapedRecord, 0, len(items))
	for _, item := range items {
		rec := scrapedRecord{ScrapedItem: item}
		if a, ok := analyses[enrich.KeyFor(item.Title, item.Source)]; ok {
			rec.ActionItems = &a
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
