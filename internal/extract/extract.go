// Package extract turns parsed government web pages into candidate notice
// records. Each site gets its own strategy; unknown sites use a conservative
// keyword-driven fallback.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

// Extractor maps a parsed document to at most maxItems records in document
// order. Implementations have no side effects.
type Extractor interface {
	Name() string
	Extract(doc *goquery.Document, src crawler.DataSource, maxItems int) []crawler.ScrapedItem
}

type rule struct {
	hostContains string
	extractor    Extractor
}

// Registry selects an Extractor by matching the source URL's host.
type Registry struct {
	rules    []rule
	fallback Extractor
}

// NewRegistry creates an empty Registry that falls back to fallback.
func NewRegistry(fallback Extractor) *Registry {
	return &Registry{fallback: fallback}
}

// Register adds a strategy for hosts containing hostContains. Rules are
// checked in registration order.
func (r *Registry) Register(hostContains string, e Extractor) {
	r.rules = append(r.rules, rule{hostContains: strings.ToLower(hostContains), extractor: e})
}

// For returns the strategy for src, or the fallback when no rule matches.
func (r *Registry) For(src crawler.DataSource) Extractor {
	host := strings.ToLower(src.URL)
	if u, err := url.Parse(src.URL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Hostname())
	}
	for _, rl := range r.rules {
		if strings.Contains(host, rl.hostContains) {
			return rl.extractor
		}
	}
	return r.fallback
}

// Default returns the registry for every government site in the catalog.
func Default() *Registry {
	r := NewRegistry(Generic())
	r.Register("incometaxindia.gov.in", IncomeTax())
	r.Register("rbi.org.in", RBI())
	r.Register("cbic.gov.in", CBIC())
	r.Register("sebi.gov.in", SEBI())
	r.Register("mahagst.gov.in", MahaGST())
	r.Register("pib.gov.in", PIB())
	return r
}

// collector accumulates validated candidates until the cap is reached.
type collector struct {
	src   crawler.DataSource
	base  *url.URL
	max   int
	items []crawler.ScrapedItem
}

func newCollector(src crawler.DataSource, maxItems int) *collector {
	c := &collector{src: src, max: maxItems}
	if u, err := url.Parse(src.URL); err == nil && u.IsAbs() {
		c.base = u
	}
	return c
}

func (c *collector) full() bool {
	return len(c.items) >= c.max
}

// add validates and appends a candidate. Empty titles and unusable hrefs are
// dropped silently.
func (c *collector) add(title, href, date string) {
	link := c.absolute(href)
	item, ok := crawler.NewItem(c.src, cleanText(title), link, strings.TrimSpace(date))
	if !ok {
		return
	}
	c.items = append(c.items, item)
}

// absolute resolves href against the source page. Fragment-only links and
// non-HTTP schemes (javascript:, mailto:) are treated as missing.
func (c *collector) absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return ""
		}
		return ref.String()
	}
	if c.base == nil {
		return ""
	}
	return c.base.ResolveReference(ref).String()
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func textLen(s string) int {
	return len([]rune(s))
}

func firstLink(sel *goquery.Selection) *goquery.Selection {
	if goquery.NodeName(sel) == "a" {
		return sel
	}
	return sel.Find("a").First()
}
