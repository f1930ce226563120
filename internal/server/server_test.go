package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aazamm/stockfeed/internal/config"
	"github.com/aazamm/stockfeed/internal/scan"
	"github.com/aazamm/stockfeed/internal/stock"
	"github.com/aazamm/stockfeed/internal/store"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Market Wire</title>
<link>https://example.com</link>
<description>Test</description>
<item>
  <title>AAPL surges after earnings beat</title>
  <link>https://example.com/aapl</link>
  <pubDate>Tue, 02 Jan 2024 09:30:00 GMT</pubDate>
</item>
<item>
  <title>Weather roundup</title>
  <link>https://example.com/weather</link>
</item>
</channel>
</rss>`

func newTestServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Fetch: config.Fetch{
			MaxPerFeed:     10,
			TimeoutSeconds: 5,
			Concurrency:    2,
			UserAgent:      "stockfeed-test",
		},
		History: config.History{Days: 30},
	}
	s, err := New(db, scan.NewRunner(cfg, db))
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return s, db
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func ptr(s string) *string { return &s }

func TestHealthRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok\n" {
		t.Errorf("expected body %q, got %q", "ok\n", rec.Body.String())
	}
}

func TestIndexRoute(t *testing.T) {
	s, db := newTestServer(t)
	db.AddFeed("https://example.com/feed.xml")
	db.AddInvestment("AAPL", ptr("Apple Inc."))

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"https://example.com/feed.xml", `href="/analyze/AAPL"`, "Apple Inc."} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in response body", want)
		}
	}
}

func TestIndexEmptyState(t *testing.T) {
	s, _ := newTestServer(t)

	body := get(t, s, "/").Body.String()
	if !strings.Contains(body, "No investments tracked yet.") {
		t.Error("expected empty investments message")
	}
	if !strings.Contains(body, "No feeds subscribed yet.") {
		t.Error("expected empty feeds message")
	}
}

func TestIndexUnknownPath(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestScanRouteNoInvestments(t *testing.T) {
	s, _ := newTestServer(t)

	body := get(t, s, "/scan").Body.String()
	if !strings.Contains(body, "No investments tracked yet.") {
		t.Errorf("expected guidance message, got %q", body)
	}
}

func TestScanRouteRendersDigest(t *testing.T) {
	s, db := newTestServer(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testRSS)
	}))
	t.Cleanup(srv.Close)
	db.AddFeed(srv.URL)
	db.AddInvestment("AAPL", nil)

	rec := get(t, s, "/scan")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h2>AAPL</h2>") {
		t.Error("expected rendered ticker heading in response")
	}
	if !strings.Contains(body, "Scanned 2 articles, found 1 mentions.") {
		t.Error("expected scan summary in response")
	}
}

func TestScanRouteListsFeedErrors(t *testing.T) {
	s, db := newTestServer(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	db.AddFeed(url)
	db.AddInvestment("AAPL", nil)

	body := get(t, s, "/scan").Body.String()
	if !strings.Contains(body, "Could not fetch "+url) {
		t.Errorf("expected feed error entry, got %q", body)
	}
	if !strings.Contains(body, "No mentions found for tracked investments.") {
		t.Error("expected empty digest message")
	}
}

func TestAnalyzeRouteRedirectsWithoutTicker(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/analyze/")
	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestAnalyzeRouteNotTracked(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/analyze/zzzz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Ticker ZZZZ is not being tracked.") {
		t.Error("expected not-tracked message in response")
	}
}

func TestAnalyzeTemplateRendersReport(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.render(rec, "analyze.html", map[string]any{
		"Ticker": "AAPL",
		"Prices": []stock.DailyPrice{{Date: "2024-01-02", Close: 110}},
		"Report": "## News & Price Correlation\n\n- **2024-01-02** Positive | $110.00 | AAPL surges after earnings beat\n",
	})

	body := rec.Body.String()
	if !strings.Contains(body, "<td>2024-01-02</td>") {
		t.Error("expected price row in response")
	}
	if !strings.Contains(body, "$110.00") {
		t.Error("expected formatted close in response")
	}
	if !strings.Contains(body, "News &amp; Price Correlation") {
		t.Error("expected report heading in response")
	}
	if !strings.Contains(body, "<strong>2024-01-02</strong>") {
		t.Error("expected rendered markdown in response")
	}
}

func TestStaticRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/static/style.css")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "nav") {
		t.Error("expected CSS content")
	}
}
