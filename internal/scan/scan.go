// Package scan orchestrates feed fetching, mention detection, and price
// correlation for the CLI and the web dashboard.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aazamm/stockfeed/internal/analysis"
	"github.com/aazamm/stockfeed/internal/config"
	"github.com/aazamm/stockfeed/internal/feed"
	"github.com/aazamm/stockfeed/internal/fetch"
	"github.com/aazamm/stockfeed/internal/stock"
	"github.com/aazamm/stockfeed/internal/store"
)

// Sentinel errors the CLI turns into user guidance.
var (
	ErrNoFeeds       = errors.New("no feeds subscribed")
	ErrNoInvestments = errors.New("no investments tracked")
	ErrNotTracked    = errors.New("ticker is not being tracked")
)

// FeedError records a feed that could not be fetched during a run.
type FeedError struct {
	URL string
	Err error
}

// ScanResult is the outcome of scanning all feeds for mentions.
type ScanResult struct {
	ArticlesScanned int
	Mentions        []analysis.ArticleMention
	FeedErrors      []FeedError
}

// AnalyzeResult is the outcome of analyzing one ticker.
type AnalyzeResult struct {
	Investment   store.Investment
	Prices       []stock.DailyPrice
	HistoryErr   error // set when the price history could not be fetched
	Mentions     []analysis.ArticleMention
	Correlations []analysis.Correlation
	FeedErrors   []FeedError
}

// DigestResult is the outcome of fetching feeds for display.
type DigestResult struct {
	Feeds []feed.Result
}

// Runner wires the store, feed fetcher, and market data client together.
type Runner struct {
	db       *store.DB
	feeds    *feed.Fetcher
	contents *fetch.ContentFetcher
	stocks   *stock.Client

	// FullText switches on readability extraction for articles that only
	// carry a headline.
	FullText bool

	// HistoryDays is the price history window Analyze correlates against.
	HistoryDays int
}

// NewRunner creates a runner from the given configuration and store.
func NewRunner(cfg *config.Config, db *store.DB) *Runner {
	return &Runner{
		db:          db,
		feeds:       feed.NewFetcher(cfg),
		contents:    fetch.NewContentFetcher(cfg),
		stocks:      stock.NewClient(),
		FullText:    cfg.Fetch.FullText,
		HistoryDays: cfg.History.Days,
	}
}

// Scan fetches every subscribed feed and finds mentions of tracked
// investments. Individual feed failures are collected in the result, not
// returned as errors.
func (r *Runner) Scan(ctx context.Context) (*ScanResult, error) {
	investments, err := r.db.ListInvestments()
	if err != nil {
		return nil, err
	}
	if len(investments) == 0 {
		return nil, ErrNoInvestments
	}

	urls, err := r.db.FeedURLs()
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, ErrNoFeeds
	}

	articles, feedErrors := r.collectArticles(ctx, urls)
	if r.FullText {
		r.contents.Enrich(articles)
	}

	return &ScanResult{
		ArticlesScanned: len(articles),
		Mentions:        analysis.FindMentions(articles, investments),
		FeedErrors:      feedErrors,
	}, nil
}

// Analyze correlates recent mentions of one tracked ticker with its price
// history. A failed history fetch does not abort the run; the result then
// carries HistoryErr and an empty price series. When no feeds are
// subscribed the partial result (investment and prices) is returned
// together with ErrNoFeeds so callers can still show the price data.
func (r *Runner) Analyze(ctx context.Context, ticker string) (*AnalyzeResult, error) {
	ticker = strings.ToUpper(ticker)

	investment, err := r.db.GetInvestment(ticker)
	if err != nil {
		return nil, err
	}
	if investment == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotTracked, ticker)
	}

	result := &AnalyzeResult{Investment: *investment}

	prices, err := r.stocks.History(ctx, ticker, r.HistoryDays)
	if err != nil {
		result.HistoryErr = err
	} else {
		result.Prices = prices
	}

	urls, err := r.db.FeedURLs()
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return result, ErrNoFeeds
	}

	articles, feedErrors := r.collectArticles(ctx, urls)
	if r.FullText {
		r.contents.Enrich(articles)
	}
	result.FeedErrors = feedErrors

	result.Mentions = analysis.FindMentions(articles, []store.Investment{*investment})
	result.Correlations = analysis.Correlate(result.Mentions, result.Prices)
	return result, nil
}

// Digest fetches feeds for the plain fetch view. With no explicit urls the
// subscription list is used; ErrNoFeeds when that is empty too.
func (r *Runner) Digest(ctx context.Context, urls []string) (*DigestResult, error) {
	if len(urls) == 0 {
		stored, err := r.db.FeedURLs()
		if err != nil {
			return nil, err
		}
		if len(stored) == 0 {
			return nil, ErrNoFeeds
		}
		urls = stored
	}
	return &DigestResult{Feeds: r.feeds.FetchAll(ctx, urls)}, nil
}

func (r *Runner) collectArticles(ctx context.Context, urls []string) ([]feed.Article, []FeedError) {
	var articles []feed.Article
	var feedErrors []FeedError
	for _, res := range r.feeds.FetchAll(ctx, urls) {
		if res.Err != nil {
			feedErrors = append(feedErrors, FeedError{URL: res.URL, Err: res.Err})
			continue
		}
		articles = append(articles, res.Feed.Articles...)
	}
	return articles, feedErrors
}
