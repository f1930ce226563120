package analysis

import (
	"testing"

	"github.com/aazamm/stockfeed/internal/feed"
	"github.com/aazamm/stockfeed/internal/store"
)

func ptr(s string) *string { return &s }

func TestFindMentionsByTicker(t *testing.T) {
	articles := []feed.Article{
		{Title: "AAPL beats earnings expectations"},
	}
	investments := []store.Investment{
		{Ticker: "AAPL", Name: ptr("Apple Inc.")},
	}

	mentions := FindMentions(articles, investments)
	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}
	if mentions[0].Ticker != "AAPL" {
		t.Errorf("expected ticker AAPL, got %s", mentions[0].Ticker)
	}
	if mentions[0].Sentiment != Positive {
		t.Errorf("expected Positive sentiment, got %s", mentions[0].Sentiment)
	}
}

func TestFindMentionsTickerInParens(t *testing.T) {
	articles := []feed.Article{
		{Title: "Apple (AAPL) reports record quarter"},
	}
	investments := []store.Investment{{Ticker: "AAPL"}}

	mentions := FindMentions(articles, investments)
	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}
}

func TestFindMentionsWholeWordOnly(t *testing.T) {
	articles := []feed.Article{
		{Title: "AAPLX fund launches next month"},
		{Title: "PROGMATIC tooling roundup"},
	}
	investments := []store.Investment{
		{Ticker: "AAPL"},
		{Ticker: "GM"},
	}

	mentions := FindMentions(articles, investments)
	if len(mentions) != 0 {
		t.Errorf("expected no mentions, got %d", len(mentions))
	}
}

func TestFindMentionsNameFallback(t *testing.T) {
	articles := []feed.Article{
		{Title: "Example Corp announces strong growth"},
	}
	investments := []store.Investment{
		{Ticker: "XYZ", Name: ptr("Example Corp")},
	}

	mentions := FindMentions(articles, investments)
	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}
	if mentions[0].Ticker != "XYZ" {
		t.Errorf("expected ticker XYZ, got %s", mentions[0].Ticker)
	}
	if mentions[0].Sentiment != Positive {
		t.Errorf("expected Positive sentiment, got %s", mentions[0].Sentiment)
	}
}

func TestFindMentionsLowercaseText(t *testing.T) {
	articles := []feed.Article{
		{Title: "apple (aapl) rises in early trading"},
	}
	investments := []store.Investment{{Ticker: "AAPL"}}

	mentions := FindMentions(articles, investments)
	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}
}

func TestFindMentionsSearchesContent(t *testing.T) {
	articles := []feed.Article{
		{
			Title:   "Morning market roundup",
			Content: ptr("Shares of MSFT fell after the announcement."),
		},
	}
	investments := []store.Investment{{Ticker: "MSFT"}}

	mentions := FindMentions(articles, investments)
	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}
	if mentions[0].Sentiment != Neutral {
		t.Errorf("expected Neutral sentiment, got %s", mentions[0].Sentiment)
	}
}

func TestFindMentionsOrder(t *testing.T) {
	articles := []feed.Article{
		{Title: "AAPL and MSFT both climb"},
		{Title: "MSFT update"},
	}
	investments := []store.Investment{
		{Ticker: "AAPL"},
		{Ticker: "MSFT"},
	}

	mentions := FindMentions(articles, investments)

	want := []struct {
		ticker string
		title  string
	}{
		{"AAPL", "AAPL and MSFT both climb"},
		{"MSFT", "AAPL and MSFT both climb"},
		{"MSFT", "MSFT update"},
	}
	if len(mentions) != len(want) {
		t.Fatalf("expected %d mentions, got %d", len(want), len(mentions))
	}
	for i, m := range mentions {
		if m.Ticker != want[i].ticker || m.Article.Title != want[i].title {
			t.Errorf("mention %d: expected %s in %q, got %s in %q",
				i, want[i].ticker, want[i].title, m.Ticker, m.Article.Title)
		}
	}
}

func TestFindMentionsNoMatchesReturnsEmpty(t *testing.T) {
	articles := []feed.Article{{Title: "Quiet day on the markets"}}
	investments := []store.Investment{{Ticker: "AAPL"}}

	mentions := FindMentions(articles, investments)
	if mentions == nil {
		t.Fatal("expected non-nil slice")
	}
	if len(mentions) != 0 {
		t.Errorf("expected no mentions, got %d", len(mentions))
	}
}

func TestFindMentionsEscapesTicker(t *testing.T) {
	articles := []feed.Article{
		{Title: "BRK.B edges up"},
		{Title: "BRKXB is unrelated"},
	}
	investments := []store.Investment{{Ticker: "BRK.B"}}

	mentions := FindMentions(articles, investments)
	if len(mentions) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(mentions))
	}
	if mentions[0].Article.Title != "BRK.B edges up" {
		t.Errorf("expected the BRK.B article, got %q", mentions[0].Article.Title)
	}
}
