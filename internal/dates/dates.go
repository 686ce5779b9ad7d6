// Package dates normalizes the free-text dates found on Indian government
// sites and answers recency questions about them.
package dates

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JakeFAU/regwatch/internal/crawler"
)

// IST is India Standard Time. India observes no DST, so a fixed zone avoids
// depending on the host tz database.
var IST = time.FixedZone("IST", 5*60*60+30*60)

const day = 24 * time.Hour

const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december`

var (
	dayFirstPattern  = regexp.MustCompile(`(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})`)
	yearFirstPattern = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	monthDayPattern  = regexp.MustCompile(`(` + monthNames + `)\s+(\d{1,2}),?\s+(\d{4})`)
	dayMonthPattern  = regexp.MustCompile(`(\d{1,2})\s+(` + monthNames + `)\s+(\d{4})`)

	months = map[string]time.Month{
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
	}

	// Layouts tried after the Indian conventions fail.
	fallbackLayouts = []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"Jan 2, 2006",
		"Jan 2 2006",
		"2 Jan 2006",
		"02-Jan-2006",
		"2-Jan-2006",
		"Jan-02-2006",
		"January 2006",
	}
)

type matcher struct {
	pattern *regexp.Regexp
	build   func(groups []string) (time.Time, bool)
}

// Order matters: the first pattern that matches and forms a real calendar
// date wins.
var matchers = []matcher{
	{pattern: dayFirstPattern, build: func(g []string) (time.Time, bool) {
		return numericDate(g[3], g[2], g[1])
	}},
	{pattern: yearFirstPattern, build: func(g []string) (time.Time, bool) {
		return numericDate(g[1], g[2], g[3])
	}},
	{pattern: monthDayPattern, build: func(g []string) (time.Time, bool) {
		return namedDate(g[3], g[1], g[2])
	}},
	{pattern: dayMonthPattern, build: func(g []string) (time.Time, bool) {
		return namedDate(g[3], g[2], g[1])
	}},
}

// ParseIndianDate parses text in the day-first, year-first, "Month DD, YYYY"
// and "DD Month YYYY" conventions, then falls back to a handful of generic
// layouts. The boolean is false when nothing recognizable was found; callers
// treat that as an unknown date, not an error.
func ParseIndianDate(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}
	cleaned := strings.ToLower(trimmed)

	for _, m := range matchers {
		groups := m.pattern.FindStringSubmatch(cleaned)
		if groups == nil {
			continue
		}
		if t, ok := m.build(groups); ok {
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, IST); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func numericDate(yearText, monthText, dayText string) (time.Time, bool) {
	year, errY := strconv.Atoi(yearText)
	month, errM := strconv.Atoi(monthText)
	d, errD := strconv.Atoi(dayText)
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	return calendarDate(year, time.Month(month), d)
}

func namedDate(yearText, monthName, dayText string) (time.Time, bool) {
	month, ok := months[monthName]
	if !ok {
		return time.Time{}, false
	}
	year, errY := strconv.Atoi(yearText)
	d, errD := strconv.Atoi(dayText)
	if errY != nil || errD != nil {
		return time.Time{}, false
	}
	return calendarDate(year, month, d)
}

// calendarDate rejects inputs such as 31-02 that time.Date would silently
// normalize into a different day. Browsers roll 31-02-2024 over to 2 March;
// here the date is reported as unparseable instead, so a listing never gets
// a notice dated in the wrong month.
func calendarDate(year int, month time.Month, d int) (time.Time, bool) {
	if month < time.January || month > time.December || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, d, 0, 0, 0, 0, IST)
	if t.Year() != year || t.Month() != month || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// WithinDays reports whether t lies in the closed window [now-days, now].
// Dates after now are outside the window.
func WithinDays(t, now time.Time, days int) bool {
	diff := now.Sub(t)
	return diff >= 0 && diff <= time.Duration(days)*day
}

// IsWithinDays is WithinDays measured against the wall clock.
func IsWithinDays(t time.Time, days int) bool {
	return WithinDays(t, time.Now(), days)
}

// RelativeTimeAt renders the distance from t to now in coarse buckets.
func RelativeTimeAt(t, now time.Time) string {
	days := int(now.Sub(t) / day)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 14:
		return "1 week ago"
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	case days < 60:
		return "1 month ago"
	default:
		return fmt.Sprintf("%d months ago", days/30)
	}
}

// RelativeTime is RelativeTimeAt measured against the wall clock.
func RelativeTime(t time.Time) string {
	return RelativeTimeAt(t, time.Now())
}

// Format renders t as "15 Jan 2024" in India Standard Time.
func Format(t time.Time) string {
	return t.In(IST).Format("2 Jan 2006")
}

// SortByDate returns a sorted copy of items. Items without a parsed date sort
// after every dated item regardless of direction, keeping their relative order.
func SortByDate(items []crawler.ScrapedItem, descending bool) []crawler.ScrapedItem {
	out := make([]crawler.ScrapedItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case !a.HasParsedDate():
			return false
		case !b.HasParsedDate():
			return true
		case descending:
			return a.ParsedDate.After(*b.ParsedDate)
		default:
			return a.ParsedDate.Before(*b.ParsedDate)
		}
	})
	return out
}
