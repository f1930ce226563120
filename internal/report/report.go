// Package report renders scan digests, correlation tables, and price
// summaries for the terminal and as markdown.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aazamm/stockfeed/internal/analysis"
	"github.com/aazamm/stockfeed/internal/feed"
	"github.com/aazamm/stockfeed/internal/stock"
)

// ScanDigest renders mentions grouped by ticker. Tickers sort
// alphabetically; within a ticker, mentions keep scan order.
func ScanDigest(mentions []analysis.ArticleMention) string {
	var b strings.Builder
	for _, ticker := range tickersIn(mentions) {
		for _, m := range mentions {
			if m.Ticker != ticker {
				continue
			}
			date := "No date"
			if m.Article.Published != nil {
				date = *m.Article.Published
			}
			fmt.Fprintf(&b, "[%s] %s [%s] %s\n", m.Ticker, m.Sentiment.Marker(), date, m.Article.Title)
			if m.Article.Link != nil {
				fmt.Fprintf(&b, "    %s\n", *m.Article.Link)
			}
		}
	}
	return b.String()
}

// CorrelationTable renders correlations date-ascending with undated
// mentions last.
func CorrelationTable(correlations []analysis.Correlation) string {
	var b strings.Builder
	b.WriteString("News & Price Correlation:\n")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	for _, corr := range sortedByDate(correlations) {
		fmt.Fprintf(&b, "[%s] %-8s | %s | %s\n", corr.Date, corr.Sentiment, priceCell(corr), corr.ArticleTitle)
	}
	return b.String()
}

// Quote renders a quote line like "AAPL: $150.25 (+1.75, +1.18%)". The
// change parts drop off when Yahoo reported no previous close.
func Quote(q *stock.Quote) string {
	if q.Change == nil {
		return fmt.Sprintf("%s: $%.2f", q.Ticker, q.Price)
	}
	sign := ""
	if *q.Change >= 0 {
		sign = "+"
	}
	if q.ChangePercent == nil {
		return fmt.Sprintf("%s: $%.2f (%s%.2f)", q.Ticker, q.Price, sign, *q.Change)
	}
	return fmt.Sprintf("%s: $%.2f (%s%.2f, %s%.2f%%)", q.Ticker, q.Price, sign, *q.Change, sign, *q.ChangePercent)
}

// RecentPrices renders the last n closing prices, oldest first.
func RecentPrices(prices []stock.DailyPrice, n int) string {
	if len(prices) == 0 {
		return ""
	}
	start := len(prices) - n
	if start < 0 {
		start = 0
	}

	var b strings.Builder
	b.WriteString("Recent prices:\n")
	for _, p := range prices[start:] {
		fmt.Fprintf(&b, "  %s: $%.2f\n", p.Date, p.Close)
	}
	return b.String()
}

// FeedArticles renders one fetched feed for the terminal.
func FeedArticles(f *feed.Feed) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", f.Title)
	if len(f.Articles) == 0 {
		b.WriteString("  No articles found.\n")
		return b.String()
	}

	for _, a := range f.Articles {
		date := "No date"
		if a.Published != nil {
			date = *a.Published
		}
		fmt.Fprintf(&b, "\n  [%s]\n", date)
		fmt.Fprintf(&b, "  %s\n", a.Title)
		if a.Link != nil {
			fmt.Fprintf(&b, "  %s\n", *a.Link)
		}
	}
	return b.String()
}

// tickersIn returns the distinct tickers mentioned, sorted alphabetically.
func tickersIn(mentions []analysis.ArticleMention) []string {
	seen := make(map[string]struct{})
	var tickers []string
	for _, m := range mentions {
		if _, ok := seen[m.Ticker]; ok {
			continue
		}
		seen[m.Ticker] = struct{}{}
		tickers = append(tickers, m.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// sortedByDate orders correlations date-ascending with undated entries at
// the end, keeping the incoming order among equals.
func sortedByDate(correlations []analysis.Correlation) []analysis.Correlation {
	sorted := make([]analysis.Correlation, len(correlations))
	copy(sorted, correlations)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date, sorted[j].Date
		if (a == "") != (b == "") {
			return a != ""
		}
		return a < b
	})
	return sorted
}

func priceCell(corr analysis.Correlation) string {
	switch {
	case corr.Price != nil && corr.PriceChange != nil:
		sign := ""
		if *corr.PriceChange >= 0 {
			sign = "+"
		}
		return fmt.Sprintf("$%.2f (%s%.1f%%)", *corr.Price, sign, *corr.PriceChange)
	case corr.Price != nil:
		return fmt.Sprintf("$%.2f", *corr.Price)
	default:
		return "N/A"
	}
}
