package report

import (
	"fmt"
	"strings"

	"github.com/aazamm/stockfeed/internal/analysis"
)

// ScanDigestMarkdown renders mentions as markdown, one section per ticker.
func ScanDigestMarkdown(mentions []analysis.ArticleMention) string {
	if len(mentions) == 0 {
		return "No mentions found for tracked investments.\n"
	}

	var b strings.Builder
	for _, ticker := range tickersIn(mentions) {
		fmt.Fprintf(&b, "## %s\n\n", ticker)
		for _, m := range mentions {
			if m.Ticker != ticker {
				continue
			}
			date := "No date"
			if m.Article.Published != nil {
				date = *m.Article.Published
			}
			if m.Article.Link != nil {
				fmt.Fprintf(&b, "- (%s) %s [%s](%s)\n", m.Sentiment.Marker(), date, m.Article.Title, *m.Article.Link)
			} else {
				fmt.Fprintf(&b, "- (%s) %s %s\n", m.Sentiment.Marker(), date, m.Article.Title)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// CorrelationTableMarkdown renders the correlation table as a markdown list
// in the same date order as the terminal table.
func CorrelationTableMarkdown(correlations []analysis.Correlation) string {
	var b strings.Builder
	b.WriteString("## News & Price Correlation\n\n")
	for _, corr := range sortedByDate(correlations) {
		date := corr.Date
		if date == "" {
			date = "No date"
		}
		fmt.Fprintf(&b, "- **%s** %s | %s | %s\n", date, corr.Sentiment, priceCell(corr), corr.ArticleTitle)
	}
	return b.String()
}
