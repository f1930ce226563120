package stock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const quoteJSON = `{"chart":{"result":[{"meta":{"regularMarketPrice":150.25,"previousClose":148.5},"timestamp":[1704153600],"indicators":{"quote":[{"close":[150.25]}]}}],"error":null}}`

const historyJSON = `{"chart":{"result":[{"meta":{"regularMarketPrice":112.0},"timestamp":[1704067200,1704153600,1704240000],"indicators":{"quote":[{"close":[100.5,null,112.0]}]}}],"error":null}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient()
	c.BaseURL = srv.URL
	return c
}

func TestQuote(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		fmt.Fprint(w, quoteJSON)
	})

	q, err := c.Quote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if gotPath != "/v8/finance/chart/AAPL?range=1d&interval=1d" {
		t.Errorf("expected chart request for AAPL, got %s", gotPath)
	}
	if q.Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", q.Ticker)
	}
	if q.Price != 150.25 {
		t.Errorf("expected price 150.25, got %v", q.Price)
	}
	if q.Change == nil || *q.Change != 1.75 {
		t.Errorf("expected change 1.75, got %v", q.Change)
	}
	wantPct := 1.75 / 148.5 * 100
	if q.ChangePercent == nil || math.Abs(*q.ChangePercent-wantPct) > 1e-9 {
		t.Errorf("expected change percent %v, got %v", wantPct, q.ChangePercent)
	}
	if want := time.Now().Format("2006-01-02"); q.Date != want {
		t.Errorf("expected date %s, got %s", want, q.Date)
	}
}

func TestQuoteMissingPreviousClose(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":42.5},"indicators":{"quote":[]}}],"error":null}}`)
	})

	q, err := c.Quote(context.Background(), "XYZ")
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if q.Price != 42.5 {
		t.Errorf("expected price 42.5, got %v", q.Price)
	}
	if q.Change != nil || q.ChangePercent != nil {
		t.Errorf("expected nil change without previous close, got %v and %v", q.Change, q.ChangePercent)
	}
}

func TestQuoteAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})

	_, err := c.Quote(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
	if !strings.Contains(err.Error(), "symbol may be delisted") {
		t.Errorf("expected error to carry the API description, got %v", err)
	}
}

func TestQuoteNoData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	})

	_, err := c.Quote(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestQuoteHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	})

	_, err := c.Quote(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestQuoteCachesResponse(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, quoteJSON)
	})

	for i := 0; i < 3; i++ {
		if _, err := c.Quote(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Quote failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestHistory(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, historyJSON)
	})

	prices, err := c.History(context.Background(), "msft", 30)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if gotQuery != "range=1mo&interval=1d" {
		t.Errorf("expected range=1mo&interval=1d, got %s", gotQuery)
	}

	want := []DailyPrice{
		{Date: "2024-01-01", Close: 100.5},
		{Date: "2024-01-03", Close: 112},
	}
	if len(prices) != len(want) {
		t.Fatalf("expected %d prices, got %d", len(want), len(prices))
	}
	for i, p := range prices {
		if p != want[i] {
			t.Errorf("price %d: expected %+v, got %+v", i, want[i], p)
		}
	}
}

func TestHistoryNoCloses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{},"indicators":{"quote":[]}}],"error":null}}`)
	})

	prices, err := c.History(context.Background(), "MSFT", 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if prices == nil || len(prices) != 0 {
		t.Errorf("expected empty price list, got %v", prices)
	}
}

func TestRangeForDays(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{1, "5d"},
		{5, "5d"},
		{6, "1mo"},
		{30, "1mo"},
		{31, "3mo"},
		{90, "3mo"},
		{91, "6mo"},
		{365, "6mo"},
	}
	for _, tt := range tests {
		if got := rangeForDays(tt.days); got != tt.want {
			t.Errorf("rangeForDays(%d): expected %s, got %s", tt.days, tt.want, got)
		}
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newCache(10 * time.Millisecond)
	c.Set("k", 1)
	if v, ok := c.Get("k"); !ok || v.(int) != 1 {
		t.Fatalf("expected cached value, got %v (ok=%v)", v, ok)
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestRateLimiterContextCancelled(t *testing.T) {
	rl := newRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected error after context cancel")
	}
}
