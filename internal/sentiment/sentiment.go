// Package sentiment scores message bodies with a deterministic VADER
// lexicon. Scores are compound polarities in [-1, 1]; identical text always
// produces an identical score.
package sentiment

import (
	"log/slog"
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// Category is the coarse classification of a sentiment score.
type Category string

const (
	Positive Category = "Positive"
	Neutral  Category = "Neutral"
	Negative Category = "Negative"
)

// Score computes the polarity of body. The second return value is false
// when the body is unscoreable (empty or whitespace-only text, or a lexicon
// failure); such messages are excluded from all sentiment aggregates.
func Score(body string) (score float64, ok bool) {
	if strings.TrimSpace(body) == "" {
		return 0, false
	}

	// A malformed body must degrade to unscored, not abort ingestion.
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("sentiment scoring failed", "panic", r)
			score, ok = 0, false
		}
	}()

	parsed := sentitext.Parse(body, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound, true
}

// Categorize maps a score to its category: positive above zero, negative
// below, neutral at exactly zero. Note the top-message selection in the
// analytics package uses its own stricter ±0.5 cut; a message can be
// Positive here without qualifying as a top positive message.
func Categorize(score float64) Category {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}
