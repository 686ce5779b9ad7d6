package scraper

import (
	"net/url"
	"strings"
)

// hostBlocklist answers whether a source URL points at a host the operator
// excluded through scraper.blocked_domains. A bare entry blocks that host
// only; "*.gov.example" or ".gov.example" also blocks every subdomain.
// Each entry maps to whether it covers subdomains.
type hostBlocklist map[string]bool

func newHostBlocklist(patterns []string) hostBlocklist {
	var b hostBlocklist
	for _, raw := range patterns {
		entry := strings.ToLower(strings.TrimSpace(raw))
		domain := strings.TrimPrefix(strings.TrimPrefix(entry, "*"), ".")
		if domain == "" {
			continue
		}
		if b == nil {
			b = make(hostBlocklist)
		}
		// A wildcard entry wins over a bare one for the same domain.
		b[domain] = b[domain] || domain != entry
	}
	return b
}

// blocksURL reports whether rawURL's host is excluded. Unparseable URLs are
// left to the fetcher to reject.
func (b hostBlocklist) blocksURL(rawURL string) bool {
	if len(b) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return b.blocked(u.Hostname())
}

// blocked walks the host from the full name towards its registrable parts:
// the full name matches any entry, a parent only matches wildcard entries.
func (b hostBlocklist) blocked(host string) bool {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if name == "" {
		return false
	}
	if _, ok := b[name]; ok {
		return true
	}
	for {
		dot := strings.IndexByte(name, '.')
		if dot < 0 {
			return false
		}
		name = name[dot+1:]
		if b[name] {
			return true
		}
	}
}
