package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// FeedReader parses an RSS/Atom feed into candidate items for a source.
type FeedReader interface {
	ReadFeed(ctx context.Context, src DataSource, maxItems int) ([]ScrapedItem, error)
}

// Limiter spaces out requests that hit the same host.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
