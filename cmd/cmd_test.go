package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const circularsPage = `<html><body>
<nav><a href="/">Home</a><a href="/contact">Contact the department</a></nav>
<ul>
  <li><a href="/docs/c1.pdf">Circular on revised return filing timelines</a></li>
  <li><a href="docs/c2.pdf">Notification amending the valuation rules</a></li>
</ul>
</body></html>`

func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(circularsPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, siteURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`
logging:
  development: false
  level: error
scraper:
  rate_limit_rps: 0
  rss_fallback: false
  priority_sources: ["Local Circulars"]
  extra_sources:
    - name: Local Circulars
      url: %s/circulars/
      type: html
      category: local
enrich:
  provider: none
  batch_pause_ms: 0
`, siteURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	cfgFile = ""

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScrapeCommandPrintsJSON(t *testing.T) {
	site := newSiteServer(t)
	cfg := writeConfig(t, site.URL)

	out, err := execute(t, "scrape", "--config", cfg)
	require.NoError(t, err)

	var records []scrapedRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	require.Equal(t, "Circular on revised return filing timelines", records[0].Title)
	require.Equal(t, site.URL+"/docs/c1.pdf", records[0].URL)
	require.Equal(t, site.URL+"/circulars/docs/c2.pdf", records[1].URL)
	require.Equal(t, "Local Circulars", records[1].Source)
	require.Equal(t, "local", records[1].Category)
	require.Nil(t, records[0].ActionItems)
}

func TestScrapeCommandMaxAndAnalyze(t *testing.T) {
	site := newSiteServer(t)
	cfg := writeConfig(t, site.URL)

	out, err := execute(t, "scrape", "--config", cfg, "--max", "1", "--analyze")
	require.NoError(t, err)

	var records []scrapedRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ActionItems)
	require.Equal(t, "Regulatory update requiring attention", records[0].ActionItems.Summary)
	require.Equal(t, []string{"Businesses", "Compliance officers"}, records[0].ActionItems.Affected)
}

func TestScrapeCommandCategorySelection(t *testing.T) {
	site := newSiteServer(t)
	cfg := writeConfig(t, site.URL)

	out, err := execute(t, "scrape", "--config", cfg, "--category", "local")
	require.NoError(t, err)
	require.Contains(t, out, "Local Circulars")

	_, err = execute(t, "scrape", "--config", cfg, "--category", "nowhere")
	require.ErrorContains(t, err, "no sources match")

	// A name outside the requested categories still joins the run.
	out, err = execute(t, "scrape", "--config", cfg, "--category", "nowhere", "--source", "Local Circulars")
	require.NoError(t, err)
	require.Contains(t, out, "Local Circulars")
}

func TestSourcesCommandListsCatalog(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")

	out, err := execute(t, "sources", "--config", cfg)
	require.NoError(t, err)
	require.Contains(t, out, "CATEGORY")
	require.Contains(t, out, "RBI Notifications")
	require.Regexp(t, `local\W+Local Circulars\W+html\W+yes`, out)
	require.NotContains(t, out, "\t")
}

func TestRenderTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	err := renderTable(&buf, []string{"NAME", "URL"}, [][]string{
		{"RBI Notifications", "https://rbi.org.in/Scripts/NotificationUser.aspx"},
		{"PIB", "https://pib.gov.in/AllRelease.aspx"},
	})
	require.NoError(t, err)

	var rbi, pib string
	for _, line := range strings.Split(buf.String(), "\n") {
		switch {
		case strings.Contains(line, "RBI Notifications"):
			rbi = line
		case strings.Contains(line, "PIB"):
			pib = line
		}
	}
	require.Contains(t, buf.String(), "NAME")
	// Long URLs are never wrapped onto a second line.
	require.Contains(t, rbi, "https://rbi.org.in/Scripts/NotificationUser.aspx")
	require.Equal(t, strings.Index(rbi, "https://"), strings.Index(pib, "https://"))
}

func TestDigestCommandNeedsKey(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1")

	_, err := execute(t, "digest", "--config", cfg)
	require.ErrorContains(t, err, "gemini.api_key")
}

func TestRootFailsOnBadConfig(t *testing.T) {
	_, err := execute(t, "sources", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "load config")
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second, zap.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
