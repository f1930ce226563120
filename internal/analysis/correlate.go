package analysis

import (
	"strings"

	"github.com/aazamm/stockfeed/internal/stock"
)

// Correlation pairs an article mention with the closing price on the day it
// was published.
type Correlation struct {
	Date         string // empty when the article carries no published date
	ArticleTitle string
	Sentiment    Sentiment
	Price        *float64
	PriceChange  *float64 // percent vs the previous entry in the history
}

// Correlate matches each mention to the daily close on its publication date.
// The mention's date is the first whitespace-separated token of the published
// string. PriceChange compares against the entry directly before the matched
// one, so prices must be in ascending date order. Mentions without a date,
// or dated outside the history, keep nil price fields. Output order follows
// mention order.
func Correlate(mentions []ArticleMention, prices []stock.DailyPrice) []Correlation {
	correlations := make([]Correlation, 0, len(mentions))

	for _, mention := range mentions {
		date := ""
		if mention.Article.Published != nil {
			if fields := strings.Fields(*mention.Article.Published); len(fields) > 0 {
				date = fields[0]
			}
		}

		c := Correlation{
			Date:         date,
			ArticleTitle: mention.Article.Title,
			Sentiment:    mention.Sentiment,
		}

		for i, p := range prices {
			if p.Date != date {
				continue
			}
			price := p.Close
			c.Price = &price
			if i > 0 && prices[i-1].Close > 0 {
				change := (p.Close - prices[i-1].Close) / prices[i-1].Close * 100
				c.PriceChange = &change
			}
			break
		}

		correlations = append(correlations, c)
	}
	return correlations
}
