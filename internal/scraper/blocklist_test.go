package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostBlocklist(t *testing.T) {
	t.Parallel()

	t.Run("bare entry blocks only that host", func(t *testing.T) {
		bl := newHostBlocklist([]string{"dor.gov.in"})
		require.True(t, bl.blocked("DOR.gov.in"))
		require.True(t, bl.blocked("dor.gov.in."))
		require.False(t, bl.blocked("www.dor.gov.in"))
		require.False(t, bl.blocked("gov.in"))
	})

	t.Run("wildcard covers domain and subdomains", func(t *testing.T) {
		bl := newHostBlocklist([]string{"*.cbic.gov.in", ".finmin.gov.in"})
		cases := map[string]bool{
			"www.cbic.gov.in":      true,
			"cbic.gov.in":          true,
			"a.b.cbic.gov.in":      true,
			"old.finmin.gov.in":    true,
			"notcbic.gov.in":       false,
			"sebi.gov.in":          false,
			"cbic.gov.in.evil.com": false,
		}
		for host, want := range cases {
			require.Equalf(t, want, bl.blocked(host), "host %s", host)
		}
	})

	t.Run("wildcard wins over bare duplicate", func(t *testing.T) {
		bl := newHostBlocklist([]string{"pib.gov.in", "*.pib.gov.in", "pib.gov.in"})
		require.True(t, bl.blocked("www.pib.gov.in"))
	})

	t.Run("urls", func(t *testing.T) {
		bl := newHostBlocklist([]string{"*.sebi.gov.in"})
		require.True(t, bl.blocksURL("https://www.sebi.gov.in:443/sebiweb/home"))
		require.False(t, bl.blocksURL("https://www.rbi.org.in/"))
		require.False(t, bl.blocksURL("http://%zz"))
	})

	t.Run("empty patterns", func(t *testing.T) {
		bl := newHostBlocklist([]string{"", "  ", "*.", "*"})
		require.Empty(t, bl)
		require.False(t, bl.blocked("anything"))
		require.False(t, bl.blocksURL("https://anything.example/"))
	})
}
