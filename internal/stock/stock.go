// Package stock fetches quotes and daily closing prices from the Yahoo
// Finance v8 chart API.
package stock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNoData is returned when Yahoo reports an empty result set for a ticker.
var ErrNoData = errors.New("no data returned for ticker")

// Yahoo rejects requests that carry Go's default user agent.
const userAgent = "Mozilla/5.0"

// Quote is a point-in-time price snapshot. Change and ChangePercent are nil
// when Yahoo does not report a previous close to derive them from.
type Quote struct {
	Ticker        string
	Price         float64
	Change        *float64
	ChangePercent *float64
	Date          string
}

// DailyPrice is a single day's closing price.
type DailyPrice struct {
	Date  string // YYYY-MM-DD
	Close float64
}

// Client fetches market data from the Yahoo Finance chart API.
type Client struct {
	BaseURL string
	client  *http.Client
	cache   *cache
	limiter *rateLimiter
}

// NewClient creates a client for the public Yahoo Finance endpoint.
func NewClient() *Client {
	return &Client{
		BaseURL: "https://query1.finance.yahoo.com",
		client:  &http.Client{Timeout: 20 * time.Second},
		cache:   newCache(5 * time.Minute),
		limiter: newRateLimiter(5, time.Second),
	}
}

// --- Yahoo chart API types ---

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta       `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators chartIndicators `json:"indicators"`
}

type chartMeta struct {
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"previousClose"`
}

type chartIndicators struct {
	Quote []chartQuote `json:"quote"`
}

type chartQuote struct {
	Close []*float64 `json:"close"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Quote returns the current price for ticker and its change from the
// previous close.
func (c *Client) Quote(ctx context.Context, ticker string) (*Quote, error) {
	ticker = strings.ToUpper(ticker)

	cacheKey := "quote:" + ticker
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(*Quote), nil
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", c.BaseURL, ticker)
	result, err := c.fetchChart(ctx, ticker, url)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		Ticker: ticker,
		Date:   time.Now().Format("2006-01-02"),
	}
	if result.Meta.RegularMarketPrice != nil {
		quote.Price = *result.Meta.RegularMarketPrice
	}
	if result.Meta.PreviousClose != nil {
		prev := *result.Meta.PreviousClose
		change := quote.Price - prev
		quote.Change = &change
		if prev > 0 {
			pct := change / prev * 100
			quote.ChangePercent = &pct
		}
	}

	c.cache.Set(cacheKey, quote)
	return quote, nil
}

// History returns daily closing prices for ticker, oldest first. The chart
// API only accepts coarse ranges, so the requested day count selects the
// smallest range that covers it.
func (c *Client) History(ctx context.Context, ticker string, days int) ([]DailyPrice, error) {
	ticker = strings.ToUpper(ticker)

	cacheKey := fmt.Sprintf("hist:%s:%d", ticker, days)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]DailyPrice), nil
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", c.BaseURL, ticker, rangeForDays(days))
	result, err := c.fetchChart(ctx, ticker, url)
	if err != nil {
		return nil, err
	}

	prices := parseCloses(result)
	c.cache.SetWithTTL(cacheKey, prices, 15*time.Minute)
	return prices, nil
}

// fetchChart performs a rate-limited GET against the chart API and unwraps
// the first result.
func (c *Client) fetchChart(ctx context.Context, ticker, url string) (*chartResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo finance request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo finance returned %d for %s", resp.StatusCode, ticker)
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance error: %s", parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}
	return &parsed.Chart.Result[0], nil
}

// rangeForDays maps a day count onto the coarse ranges the chart API accepts.
func rangeForDays(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	default:
		return "6mo"
	}
}

// parseCloses zips timestamps with closing prices, skipping days where Yahoo
// reports a null close.
func parseCloses(result *chartResult) []DailyPrice {
	prices := []DailyPrice{}
	if len(result.Indicators.Quote) == 0 {
		return prices
	}
	closes := result.Indicators.Quote[0].Close

	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		prices = append(prices, DailyPrice{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: *closes[i],
		})
	}
	return prices
}
