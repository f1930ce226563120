package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/aazamm/stockfeed/internal/config"
)

// Article is one normalized feed entry. Optional fields are nil when the
// feed does not carry them.
type Article struct {
	Title     string
	Link      *string
	Published *string // "YYYY-MM-DD HH:MM"
	Content   *string
}

// Feed holds the parsed result of one feed URL.
type Feed struct {
	URL      string
	Title    string
	Articles []Article
}

// Fetcher retrieves and normalizes RSS/Atom feeds.
type Fetcher struct {
	parser      *gofeed.Parser
	maxPerFeed  int
	concurrency int
}

// NewFetcher creates a feed fetcher configured from cfg.
func NewFetcher(cfg *config.Config) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.Fetch.UserAgent
	parser.Client = &http.Client{
		Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
	}

	concurrency := cfg.Fetch.Concurrency
	if concurrency <= 0 {
		// SetLimit(0) would never run a goroutine.
		concurrency = 1
	}

	return &Fetcher{
		parser:      parser,
		maxPerFeed:  cfg.Fetch.MaxPerFeed,
		concurrency: concurrency,
	}
}

// Result pairs a feed URL with its fetch outcome. Exactly one of Feed and
// Err is set.
type Result struct {
	URL  string
	Feed *Feed
	Err  error
}

// FetchAll fetches every URL concurrently and returns one result per URL,
// in input order regardless of completion order. Individual feed failures
// are recorded in the result, never returned as an error.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			fetched, err := f.Fetch(gctx, u)
			results[i] = Result{URL: u, Feed: fetched, Err: err}
			return nil
		})
	}

	g.Wait()
	return results
}

// Fetch retrieves and parses a single feed, keeping at most the configured
// number of entries in feed order (feeds list newest first).
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*Feed, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", feedURL, err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = "Untitled Feed"
	}

	result := &Feed{URL: feedURL, Title: title}
	for _, item := range parsed.Items {
		if len(result.Articles) >= f.maxPerFeed {
			break
		}
		result.Articles = append(result.Articles, parseItem(item))
	}

	return result, nil
}

func parseItem(item *gofeed.Item) Article {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}

	article := Article{Title: title}

	link := item.Link
	if link == "" && len(item.Links) > 0 {
		link = item.Links[0]
	}
	if link != "" {
		article.Link = &link
	}

	var published string
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.Format("2006-01-02 15:04")
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.Format("2006-01-02 15:04")
	}
	if published != "" {
		article.Published = &published
	}

	// Prefer the entry summary, fall back to the full body.
	content := cleanHTML(item.Description)
	if content == "" {
		content = cleanHTML(item.Content)
	}
	if content != "" {
		article.Content = &content
	}

	return article
}

// cleanHTML strips markup from feed-supplied text and collapses whitespace.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
