package sentiment

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// Score is a lexicon reading of a text: polarity in [-1, 1], subjectivity in [0, 1]
type Score struct {
	Polarity     float64
	Subjectivity float64
}

// vader loads the VADER lexicon on first use
var vader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Polarity scores text with the VADER lexicon. Polarity is the normalised
// compound score. Subjectivity is the share of the text carrying positive or
// negative sentiment, i.e. everything VADER does not rate as neutral.
func Polarity(text string) Score {
	if strings.TrimSpace(text) == "" {
		return Score{}
	}

	s := vader().PolarityScores(text)
	return Score{
		Polarity:     clamp(s.Compound, -1, 1),
		Subjectivity: clamp(s.Positive+s.Negative, 0, 1),
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
