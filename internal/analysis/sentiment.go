// Package analysis detects mentions of tracked investments in articles,
// scores article sentiment against fixed word lists, and correlates mentions
// with daily price movements.
package analysis

import (
	"regexp"
	"strings"
)

// Sentiment classifies the tone of an article.
type Sentiment int

const (
	Neutral Sentiment = iota
	Positive
	Negative
)

// String returns the sentiment as a word.
func (s Sentiment) String() string {
	switch s {
	case Positive:
		return "Positive"
	case Negative:
		return "Negative"
	default:
		return "Neutral"
	}
}

// Marker returns the one-character indicator used in scan output.
func (s Sentiment) Marker() string {
	switch s {
	case Positive:
		return "+"
	case Negative:
		return "-"
	default:
		return "~"
	}
}

var positiveWords = []string{
	"gain", "gains", "surge", "surges", "surging", "rise", "rises", "rising",
	"profit", "profits", "beat", "beats", "bullish", "growth", "growing",
	"rally", "rallies", "soar", "soars", "soaring", "jump", "jumps",
	"record", "high", "upgrade", "upgrades", "strong", "success", "win",
}

var negativeWords = []string{
	"fall", "falls", "falling", "drop", "drops", "dropping", "loss", "losses",
	"miss", "misses", "bearish", "decline", "declines", "declining", "crash",
	"crashes", "plunge", "plunges", "plunging", "sink", "sinks", "sinking",
	"low", "downgrade", "downgrades", "weak", "fail", "fails", "cut", "cuts",
}

// The word lists are fixed for the life of the process, so their patterns
// compile once at startup.
var (
	positivePatterns = compileWords(positiveWords)
	negativePatterns = compileWords(negativeWords)
)

func compileWords(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`\b` + w + `\b`)
	}
	return patterns
}

// Classify scores text by how many distinct positive and negative words it
// contains. A word repeated in the text still counts once. Whichever list
// has more distinct matches wins; ties are Neutral.
func Classify(text string) Sentiment {
	lower := strings.ToLower(text)

	positive := countPresent(positivePatterns, lower)
	negative := countPresent(negativePatterns, lower)

	switch {
	case positive > negative:
		return Positive
	case negative > positive:
		return Negative
	default:
		return Neutral
	}
}

func countPresent(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}
