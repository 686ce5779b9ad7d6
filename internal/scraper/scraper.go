// Package scraper fetches regulatory sources and aggregates their notices.
// A single source can fail, time out or panic without affecting the others;
// such a source simply contributes no items.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/clock/system"
	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/dates"
	"github.com/JakeFAU/regwatch/internal/extract"
	"github.com/JakeFAU/regwatch/internal/metrics"
)

// DefaultFilterDays is the recency window used when the caller passes none.
const DefaultFilterDays = 14

// ErrBlocked is returned internally when a source's host is on the blocklist.
var ErrBlocked = errors.New("source host is blocked")

// Options wires a Scraper's collaborators. Only Fetcher is required.
type Options struct {
	Fetcher    crawler.Fetcher
	Feeds      crawler.FeedReader
	Limiter    crawler.Limiter
	Extractors *extract.Registry
	Clock      crawler.Clock
	Logger     *zap.Logger
	// BlockedDomains lists hosts that are never fetched. Entries may use a
	// "*." or "." prefix to cover subdomains.
	BlockedDomains []string
}

// Scraper runs the fetch, parse and extract pipeline for sources.
type Scraper struct {
	fetcher    crawler.Fetcher
	feeds      crawler.FeedReader
	limiter    crawler.Limiter
	extractors *extract.Registry
	clock      crawler.Clock
	logger     *zap.Logger
	blocklist  hostBlocklist
}

// scrapeOutcome is the per-source result before errors are absorbed.
// degraded holds an HTML failure that the feed fallback papered over.
type scrapeOutcome struct {
	items    []crawler.ScrapedItem
	status   string
	err      error
	degraded error
}

// New creates a Scraper.
func New(opts Options) *Scraper {
	s := &Scraper{
		fetcher:    opts.Fetcher,
		feeds:      opts.Feeds,
		limiter:    opts.Limiter,
		extractors: opts.Extractors,
		clock:      opts.Clock,
		logger:     opts.Logger,
		blocklist:  newHostBlocklist(opts.BlockedDomains),
	}
	if s.extractors == nil {
		s.extractors = extract.Default()
	}
	if s.clock == nil {
		s.clock = system.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("scraper")
	return s
}

// ScrapeSource fetches one source and returns at most maxItems records in
// extraction order. It never fails: any error yields an empty slice.
func (s *Scraper) ScrapeSource(ctx context.Context, src crawler.DataSource, maxItems int) []crawler.ScrapedItem {
	out := s.scrape(ctx, src, maxItems)
	metrics.ObserveScrape(src.Name, out.status, len(out.items))
	if out.err != nil {
		s.logger.Warn("source scrape failed",
			zap.String("source", src.Name),
			zap.String("url", src.URL),
			zap.String("status", out.status),
			zap.Error(out.err),
		)
		return []crawler.ScrapedItem{}
	}
	if out.degraded != nil {
		s.logger.Warn("source scrape failed",
			zap.String("source", src.Name),
			zap.String("url", src.URL),
			zap.String("status", out.status),
			zap.Int("feed_items", len(out.items)),
			zap.Error(out.degraded),
		)
		return out.items
	}
	s.logger.Debug("source scraped",
		zap.String("source", src.Name),
		zap.String("status", out.status),
		zap.Int("items", len(out.items)),
	)
	return out.items
}

func (s *Scraper) scrape(ctx context.Context, src crawler.DataSource, maxItems int) (out scrapeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = scrapeOutcome{status: metrics.StatusFailed, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if s.blocklist.blocksURL(src.URL) {
		return scrapeOutcome{status: metrics.StatusBlocked, err: ErrBlocked}
	}
	if maxItems <= 0 {
		return scrapeOutcome{items: []crawler.ScrapedItem{}, status: metrics.StatusEmpty}
	}

	items, err := s.scrapeHTML(ctx, src, maxItems)
	if len(items) > 0 {
		return scrapeOutcome{items: items, status: metrics.StatusOK}
	}
	if s.feeds != nil && src.RSS != "" {
		feedItems, feedErr := s.readFeed(ctx, src, maxItems)
		if feedErr == nil {
			return scrapeOutcome{items: feedItems, status: metrics.StatusFeed, degraded: err}
		}
		err = errors.Join(err, feedErr)
	}
	if err != nil {
		return scrapeOutcome{status: metrics.StatusFailed, err: err}
	}
	return scrapeOutcome{items: []crawler.ScrapedItem{}, status: metrics.StatusEmpty}
}

func (s *Scraper) scrapeHTML(ctx context.Context, src crawler.DataSource, maxItems int) ([]crawler.ScrapedItem, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, src.URL); err != nil {
			return nil, fmt.Errorf("wait for %s: %w", src.Name, err)
		}
	}
	resp, err := s.fetcher.Fetch(ctx, crawler.FetchRequest{URL: src.URL})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name, err)
	}
	ex := s.extractors.For(src)
	items := ex.Extract(doc, src, maxItems)
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items, nil
}

func (s *Scraper) readFeed(ctx context.Context, src crawler.DataSource, maxItems int) ([]crawler.ScrapedItem, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, src.RSS); err != nil {
			return nil, fmt.Errorf("wait for %s feed: %w", src.Name, err)
		}
	}
	items, err := s.feeds.ReadFeed(ctx, src, maxItems)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", src.Name, err)
	}
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items, nil
}

// ScrapeMultiple scrapes every source concurrently and waits for all of them
// to settle. Results are concatenated in source order, each record gets a
// ParsedDate when its raw date is recognized, and dated records older than
// filterDays (or in the future) are dropped. Undated records are kept.
// A filterDays of zero or less means DefaultFilterDays.
func (s *Scraper) ScrapeMultiple(
	ctx context.Context,
	sources []crawler.DataSource,
	maxPerSource int,
	filterDays int,
) []crawler.ScrapedItem {
	if filterDays <= 0 {
		filterDays = DefaultFilterDays
	}

	slots := make([][]crawler.ScrapedItem, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src crawler.DataSource) {
			defer wg.Done()
			slots[i] = s.ScrapeSource(ctx, src, maxPerSource)
		}(i, src)
	}
	wg.Wait()

	now := s.clock.Now()
	total := 0
	kept := make([]crawler.ScrapedItem, 0)
	for _, items := range slots {
		for _, item := range items {
			total++
			if item.Date != "" {
				if t, ok := dates.ParseIndianDate(item.Date); ok {
					item.ParsedDate = &t
					if !dates.WithinDays(t, now, filterDays) {
						continue
					}
				}
			}
			kept = append(kept, item)
		}
	}

	metrics.ObserveFiltered(total - len(kept))
	s.logger.Info("aggregated sources",
		zap.String("filtered", fmt.Sprintf("%d/%d", len(kept), total)),
		zap.Int("sources", len(sources)),
		zap.Int("filter_days", filterDays),
	)
	return kept
}
