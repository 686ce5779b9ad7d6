package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/JakeFAU/regwatch/internal/cache"
	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/dates"
)

// ErrNoItems means every priority source came back empty.
var ErrNoItems = errors.New("no data could be scraped from sources")

const (
	latestKey = "latest"

	defaultRefreshTimeout = 60 * time.Second
)

// Aggregator scrapes a set of sources into one recency-filtered list.
type Aggregator interface {
	ScrapeMultiple(ctx context.Context, sources []crawler.DataSource, maxPerSource, filterDays int) []crawler.ScrapedItem
}

// itemFeed serves the priority-source item list from a short-lived cache.
// Concurrent misses share one scrape. The shared scrape is detached from the
// request that started it, so one caller going away does not fail the rest.
type itemFeed struct {
	agg            Aggregator
	sources        []crawler.DataSource
	maxItems       int
	filterDays     int
	refreshTimeout time.Duration
	cache          *cache.TTL[[]crawler.ScrapedItem]
	group          singleflight.Group
	logger         *zap.Logger
}

func newItemFeed(
	agg Aggregator,
	sources []crawler.DataSource,
	maxItems, filterDays int,
	ttl, refreshTimeout time.Duration,
	clock crawler.Clock,
	logger *zap.Logger,
) *itemFeed {
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}
	return &itemFeed{
		agg:            agg,
		sources:        sources,
		maxItems:       maxItems,
		filterDays:     filterDays,
		refreshTimeout: refreshTimeout,
		cache:          cache.New[[]crawler.ScrapedItem](ttl, clock),
		logger:         logger,
	}
}

// latest returns the cached list when it is fresh, otherwise scrapes.
func (f *itemFeed) latest(ctx context.Context) ([]crawler.ScrapedItem, bool, error) {
	if items, _, ok := f.cache.Get(latestKey); ok {
		f.logger.Debug("serving cached items", zap.Int("items", len(items)))
		return items, true, nil
	}
	flight := f.group.DoChan(latestKey, func() (any, error) {
		scrapeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.refreshTimeout)
		defer cancel()
		return f.refresh(scrapeCtx)
	})
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("wait for scrape: %w", ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]crawler.ScrapedItem), false, nil
	}
}

// refresh scrapes the sources, sorts newest first and caches a non-empty
// result. An empty result leaves the previous cache entry alone.
func (f *itemFeed) refresh(ctx context.Context) ([]crawler.ScrapedItem, error) {
	f.logger.Info("starting fresh scrape", zap.Int("sources", len(f.sources)))
	items := f.agg.ScrapeMultiple(ctx, f.sources, f.maxItems, f.filterDays)
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	items = dates.SortByDate(items, true)
	f.cache.Set(latestKey, items)
	f.logger.Info("scraped items", zap.Int("items", len(items)))
	return items, nil
}
