package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

// noDateCell disables date extraction for a TableRows strategy.
const noDateCell = -1

// TableRows takes the first link of every matching row, optionally reading
// the raw date from a fixed cell.
type TableRows struct {
	Label    string
	Selector string
	DateCell int
	// Skip drops rows whose cleaned title it reports true for.
	Skip func(title string) bool
}

// Name implements Extractor.
func (t TableRows) Name() string { return t.Label }

// Extract implements Extractor.
func (t TableRows) Extract(doc *goquery.Document, src crawler.DataSource, maxItems int) []crawler.ScrapedItem {
	c := newCollector(src, maxItems)
	if c.full() {
		return c.items
	}
	doc.Find(t.Selector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find("a").First()
		title := cleanText(link.Text())
		href, _ := link.Attr("href")
		if t.Skip != nil && t.Skip(title) {
			return true
		}
		date := ""
		if t.DateCell != noDateCell {
			date = row.Find("td").Eq(t.DateCell).Text()
		}
		c.add(title, href, date)
		return !c.full()
	})
	return c.items
}

// Links walks every matching element (an anchor or a container holding
// one) and keeps links whose text is long enough and, when Keywords is set,
// mentions one of them.
type Links struct {
	Label       string
	Selector    string
	MinTitleLen int
	Keywords    []string
}

// Name implements Extractor.
func (l Links) Name() string { return l.Label }

// Extract implements Extractor.
func (l Links) Extract(doc *goquery.Document, src crawler.DataSource, maxItems int) []crawler.ScrapedItem {
	c := newCollector(src, maxItems)
	if c.full() {
		return c.items
	}
	doc.Find(l.Selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		link := firstLink(el)
		title := cleanText(link.Text())
		if textLen(title) <= l.MinTitleLen || !l.relevant(title) {
			return true
		}
		href, _ := link.Attr("href")
		c.add(title, href, "")
		return !c.full()
	})
	return c.items
}

func (l Links) relevant(title string) bool {
	if len(l.Keywords) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, kw := range l.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Blocks treats each matching element as one notice card: the title comes
// from its first link, or from a heading when the link has no text.
type Blocks struct {
	Label         string
	Selector      string
	TitleSelector string
	DateSelector  string
}

// Name implements Extractor.
func (b Blocks) Name() string { return b.Label }

// Extract implements Extractor.
func (b Blocks) Extract(doc *goquery.Document, src crawler.DataSource, maxItems int) []crawler.ScrapedItem {
	c := newCollector(src, maxItems)
	if c.full() {
		return c.items
	}
	doc.Find(b.Selector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		link := block.Find("a").First()
		title := cleanText(link.Text())
		if title == "" {
			title = cleanText(block.Find(b.TitleSelector).Text())
		}
		href, _ := link.Attr("href")
		c.add(title, href, block.Find(b.DateSelector).Text())
		return !c.full()
	})
	return c.items
}

// IncomeTax handles the SharePoint list views on incometaxindia.gov.in.
func IncomeTax() Extractor {
	return TableRows{
		Label:    "incometax",
		Selector: "table tr, .ms-listviewtable tr",
		DateCell: 1,
	}
}

// RBI handles the notification tables on rbi.org.in. Rows whose link text is
// a "notification" heading are section labels, not notices.
func RBI() Extractor {
	return TableRows{
		Label:    "rbi",
		Selector: "table tr",
		DateCell: 0,
		Skip: func(title string) bool {
			return strings.Contains(strings.ToLower(title), "notification")
		},
	}
}

// SEBI handles the circular listing on sebi.gov.in.
func SEBI() Extractor {
	return TableRows{
		Label:    "sebi",
		Selector: "table tr",
		DateCell: 0,
	}
}

// CBIC handles the CBIC GST, customs and excise pages.
//
// A bare relative href such as "rate-notif.pdf" resolves against the listing
// page, giving /htdocs-cbec/gst/rate-notif.pdf, not against the site root.
// Rooted hrefs ("/x") still land on the site origin.
func CBIC() Extractor {
	return Links{
		Label:       "cbic",
		Selector:    "table a, .contentpaneopen a, ul li a",
		MinTitleLen: 10,
	}
}

// PIB handles press releases on pib.gov.in.
func PIB() Extractor {
	return Links{
		Label:       "pib",
		Selector:    ".content-area a, table tr",
		MinTitleLen: 15,
	}
}

// MahaGST handles the notification cards on mahagst.gov.in.
func MahaGST() Extractor {
	return Blocks{
		Label:         "mahagst",
		Selector:      "article, .notification-item, .update-item",
		TitleSelector: "h3, h4, .title",
		DateSelector:  ".date, time",
	}
}

// Generic is the fallback for unrecognized sites. It favors precision: only
// long link texts naming a regulatory instrument survive, which keeps
// navigation chrome out.
func Generic() Extractor {
	return Links{
		Label:       "generic",
		Selector:    "a",
		MinTitleLen: 20,
		Keywords:    []string{"notification", "circular", "order", "amendment"},
	}
}
