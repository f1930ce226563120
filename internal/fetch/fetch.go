// Package fetch retrieves full article text for feed entries that only
// carry a headline or a short summary.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/aazamm/stockfeed/internal/config"
	"github.com/aazamm/stockfeed/internal/feed"
)

// Mention matching only needs the opening of an article.
const maxContentLen = 4000

// Result holds the counts of a content fetch run.
type Result struct {
	Fetched int
	Skipped int
	Failed  int
}

// ContentFetcher fetches full article text via HTTP + readability extraction.
type ContentFetcher struct {
	client    *http.Client
	userAgent string
}

// NewContentFetcher creates a content fetcher using the configured timeout
// and user agent.
func NewContentFetcher(cfg *config.Config) *ContentFetcher {
	return &ContentFetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: cfg.Fetch.UserAgent,
	}
}

// Enrich fills in Content for articles that have a link but no content,
// mutating the slice in place. A domain that fails once is skipped for the
// rest of the run. Extraction failures leave the article as it was.
func (f *ContentFetcher) Enrich(articles []feed.Article) *Result {
	result := &Result{}
	failedDomains := make(map[string]struct{})

	for i := range articles {
		article := &articles[i]
		if article.Content != nil && strings.TrimSpace(*article.Content) != "" {
			result.Skipped++
			continue
		}
		if article.Link == nil {
			result.Skipped++
			continue
		}

		link := *article.Link
		u, _ := url.Parse(link)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			result.Failed++
			continue
		}

		content, httpErr := f.fetchArticleContent(link)
		if httpErr != nil {
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s, skipping remaining from %s", link, domain)
			continue
		}

		if content != "" {
			article.Content = &content
			result.Fetched++
		} else {
			result.Failed++
		}
	}

	if result.Fetched > 0 || result.Failed > 0 {
		log.Printf("Content fetch complete: %d fetched, %d failed", result.Fetched, result.Failed)
	}
	return result
}

func (f *ContentFetcher) fetchArticleContent(articleURL string) (string, error) {
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) <= 100 {
		return "", nil
	}
	if len(text) > maxContentLen {
		text = text[:maxContentLen]
	}
	return text, nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
