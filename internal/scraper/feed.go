package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

const feedAccept = "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8"

// FeedReader reads a source's alternate RSS or Atom feed through the same
// Fetcher used for HTML pages.
type FeedReader struct {
	fetcher crawler.Fetcher
}

// NewFeedReader creates a FeedReader.
func NewFeedReader(fetcher crawler.Fetcher) *FeedReader {
	return &FeedReader{fetcher: fetcher}
}

// ReadFeed fetches src.RSS and maps up to maxItems entries to records.
// Entries without a title or link are skipped.
func (r *FeedReader) ReadFeed(ctx context.Context, src crawler.DataSource, maxItems int) ([]crawler.ScrapedItem, error) {
	if src.RSS == "" {
		return nil, fmt.Errorf("source %q has no feed", src.Name)
	}
	if maxItems <= 0 {
		return []crawler.ScrapedItem{}, nil
	}
	resp, err := r.fetcher.Fetch(ctx, crawler.FetchRequest{
		URL:     src.RSS,
		Headers: http.Header{"Accept": {feedAccept}},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	// gofeed parsers keep per-document state.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	base, _ := url.Parse(src.RSS)
	items := make([]crawler.ScrapedItem, 0, min(maxItems, len(feed.Items)))
	for _, entry := range feed.Items {
		if len(items) >= maxItems {
			break
		}
		if entry == nil {
			continue
		}
		date := entry.Published
		if date == "" {
			date = entry.Updated
		}
		title := strings.Join(strings.Fields(entry.Title), " ")
		item, ok := crawler.NewItem(src, title, resolveLink(base, entry.Link), strings.TrimSpace(date))
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func resolveLink(base *url.URL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if ref.IsAbs() || base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
