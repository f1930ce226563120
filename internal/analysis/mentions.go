package analysis

import (
	"regexp"
	"strings"

	"github.com/aazamm/stockfeed/internal/feed"
	"github.com/aazamm/stockfeed/internal/store"
)

// ArticleMention records that an article mentioned a tracked investment.
type ArticleMention struct {
	Ticker    string
	Article   feed.Article
	Sentiment Sentiment
}

// investmentPattern holds the match patterns compiled for one investment.
type investmentPattern struct {
	ticker string
	symbol *regexp.Regexp
	name   *regexp.Regexp // nil when the investment has no name
}

// FindMentions scans articles for tracked investments. An article mentions
// an investment when the ticker appears as a whole word in the uppercased
// title or content, or failing that, when the investment's name does.
// Results keep article order, with investments in their given order within
// each article. The result is never nil.
func FindMentions(articles []feed.Article, investments []store.Investment) []ArticleMention {
	patterns := compileInvestments(investments)

	mentions := []ArticleMention{}
	for _, article := range articles {
		content := ""
		if article.Content != nil {
			content = *article.Content
		}
		text := article.Title + " " + content
		upper := strings.ToUpper(text)

		for _, p := range patterns {
			found := p.symbol.MatchString(upper)
			if !found && p.name != nil {
				found = p.name.MatchString(upper)
			}
			if !found {
				continue
			}

			mentions = append(mentions, ArticleMention{
				Ticker:    p.ticker,
				Article:   article,
				Sentiment: Classify(text),
			})
		}
	}
	return mentions
}

// compileInvestments builds each investment's patterns once per scan rather
// than once per article.
func compileInvestments(investments []store.Investment) []investmentPattern {
	patterns := make([]investmentPattern, 0, len(investments))
	for _, inv := range investments {
		p := investmentPattern{
			ticker: inv.Ticker,
			symbol: wordPattern(strings.ToUpper(inv.Ticker)),
		}
		if inv.Name != nil {
			p.name = wordPattern(strings.ToUpper(*inv.Name))
		}
		patterns = append(patterns, p)
	}
	return patterns
}

func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
}
