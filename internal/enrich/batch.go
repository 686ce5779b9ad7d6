package enrich

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

// Batch defaults keep a free-tier inference endpoint from rate limiting us.
const (
	DefaultBatchSize  = 3
	DefaultBatchPause = time.Second
)

// Key identifies a notice in batch results.
type Key string

// KeyFor builds the "title|source" key.
func KeyFor(title, source string) Key {
	return Key(title + "|" + source)
}

// Options configures an Analyzer. A nil Generator is allowed and makes
// every analysis use Fallback.
type Options struct {
	Generator  TextGenerator
	BatchSize  int
	BatchPause time.Duration
	Logger     *zap.Logger
}

// Analyzer produces ActionItems for notices.
type Analyzer struct {
	generator TextGenerator
	batchSize int
	pause     time.Duration
	logger    *zap.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		generator: opts.Generator,
		batchSize: opts.BatchSize,
		pause:     opts.BatchPause,
		logger:    opts.Logger,
	}
	if a.batchSize <= 0 {
		a.batchSize = DefaultBatchSize
	}
	if a.pause < 0 {
		a.pause = 0
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.logger = a.logger.Named("enrich")
	return a
}

// AnalyzeBatch analyzes items in consecutive groups of the batch size. Items
// in a group run concurrently and every item gets an entry; groups are
// separated by the configured pause. Duplicate keys keep the last result.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, items []crawler.ScrapedItem) map[Key]ActionItems {
	results := make(map[Key]ActionItems, len(items))
	for start := 0; start < len(items); start += a.batchSize {
		end := min(start+a.batchSize, len(items))
		group := items[start:end]

		outcomes := make([]ActionItems, len(group))
		var wg sync.WaitGroup
		for i, item := range group {
			wg.Add(1)
			go func(i int, item crawler.ScrapedItem) {
				defer wg.Done()
				outcomes[i] = a.Analyze(ctx, item.Title, item.Source, item.Date)
			}(i, item)
		}
		wg.Wait()

		for i, item := range group {
			results[KeyFor(item.Title, item.Source)] = outcomes[i]
		}

		if end < len(items) {
			a.sleep(ctx)
		}
	}
	return results
}

func (a *Analyzer) sleep(ctx context.Context) {
	if a.pause == 0 {
		return
	}
	timer := time.NewTimer(a.pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
