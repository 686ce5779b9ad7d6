package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/regwatch/internal/crawler"
	"github.com/JakeFAU/regwatch/internal/dates"
)

const rbiFeed = `<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0">
<channel>
<title>RBI Press Releases</title>
<link>https://www.rbi.org.in</link>
<item>
  <title>  Money Market Operations
   as on March 18, 2024 </title>
  <link>https://www.rbi.org.in/Scripts/BS_PressReleaseDisplay.aspx?prid=1</link>
  <pubDate>Mon, 18 Mar 2024 19:00:00 +0530</pubDate>
</item>
<item>
  <title></title>
  <link>https://www.rbi.org.in/Scripts/BS_PressReleaseDisplay.aspx?prid=2</link>
</item>
<item>
  <title>Relative link entry</title>
  <link>/Scripts/BS_PressReleaseDisplay.aspx?prid=3</link>
</item>
<item>
  <title>Fourth entry</title>
  <link>https://www.rbi.org.in/Scripts/BS_PressReleaseDisplay.aspx?prid=4</link>
</item>
</channel>
</rss>`

func TestFeedReaderMapsEntries(t *testing.T) {
	t.Parallel()

	src := crawler.DataSource{
		Name:     "RBI Notifications",
		URL:      "https://www.rbi.org.in/Scripts/NotificationUser.aspx",
		RSS:      "https://www.rbi.org.in/scripts/RSSDisplay.aspx?f=Press",
		Category: "regulators",
	}
	fetcher := &fakeFetcher{pages: map[string]page{src.RSS: {body: rbiFeed}}}
	r := NewFeedReader(fetcher)

	items, err := r.ReadFeed(context.Background(), src, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Money Market Operations as on March 18, 2024", items[0].Title)
	require.Equal(t, "RBI Notifications", items[0].Source)
	require.Equal(t, "regulators", items[0].Category)
	require.Equal(t, "https://www.rbi.org.in/Scripts/BS_PressReleaseDisplay.aspx?prid=3", items[1].URL)

	parsed, ok := dates.ParseIndianDate(items[0].Date)
	require.True(t, ok)
	require.Equal(t, 18, parsed.Day())
}

func TestFeedReaderErrors(t *testing.T) {
	t.Parallel()

	src := crawler.DataSource{Name: "broken", RSS: "https://feeds.example.gov.in/rss"}
	r := NewFeedReader(&fakeFetcher{pages: map[string]page{src.RSS: {body: "not a feed"}}})
	_, err := r.ReadFeed(context.Background(), src, 3)
	require.Error(t, err)

	_, err = r.ReadFeed(context.Background(), crawler.DataSource{Name: "none"}, 3)
	require.Error(t, err)

	_, err = NewFeedReader(&fakeFetcher{}).ReadFeed(context.Background(), src, 3)
	require.Error(t, err)
}
