package crawler

import (
	"net/http"
	"time"
)

// SourceType describes how a source publishes its notices.
type SourceType string

// Source types declared in the registry. Only HTML pages are scraped directly;
// RSS is consulted as an alternate feed.
const (
	SourceHTML SourceType = "html"
	SourcePDF  SourceType = "pdf"
	SourceRSS  SourceType = "rss"
)

// DataSource is an immutable descriptor of one government site or feed.
type DataSource struct {
	Name     string     `json:"name" mapstructure:"name"`
	URL      string     `json:"url" mapstructure:"url"`
	Type     SourceType `json:"type" mapstructure:"type"`
	RSS      string     `json:"rss,omitempty" mapstructure:"rss"`
	Category string     `json:"category" mapstructure:"category"`
}

// ScrapedItem is the normalized record produced for every notice.
// Title and URL are always both non-empty. ParsedDate is only ever set by the
// aggregator, never by an extractor.
type ScrapedItem struct {
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Date       string     `json:"date,omitempty"`
	ParsedDate *time.Time `json:"parsedDate,omitempty"`
	Source     string     `json:"source"`
	Category   string     `json:"category"`
}

// HasParsedDate reports whether the aggregator recognized the raw date.
func (i ScrapedItem) HasParsedDate() bool {
	return i.ParsedDate != nil && !i.ParsedDate.IsZero()
}

// NewItem builds a ScrapedItem stamped with the source's name and category.
// It returns false when title or url is empty so callers can drop the
// candidate without emitting a half-populated record.
func NewItem(src DataSource, title, url, date string) (ScrapedItem, bool) {
	if title == "" || url == "" {
		return ScrapedItem{}, false
	}
	return ScrapedItem{
		Title:    title,
		URL:      url,
		Date:     date,
		Source:   src.Name,
		Category: src.Category,
	}, true
}

// FetchRequest captures everything needed to fetch one source page.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
