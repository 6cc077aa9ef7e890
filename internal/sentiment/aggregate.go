package sentiment

import (
	"context"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

// Mood thresholds on average lexicon polarity
const (
	PositiveThreshold = 0.2
	NegativeThreshold = -0.2
)

// Analyzer combines the lexicon scorer with an optional transformer classifier
type Analyzer struct {
	classifier Classifier
}

// NewAnalyzer creates an analyzer. classifier may be nil.
func NewAnalyzer(classifier Classifier) *Analyzer {
	return &Analyzer{classifier: classifier}
}

// Aggregate scores every text and averages the results.
//
// Polarity and subjectivity average over non-empty texts. The positive
// percentage is taken over all texts, empty ones included, and stays 0 when no
// classifier is available.
func (a *Analyzer) Aggregate(ctx context.Context, texts []string) models.SentimentData {
	if len(texts) == 0 {
		return models.SentimentData{
			TextBlob:    models.LexiconScores{},
			Transformer: models.TransformerScores{PositivePercentage: 50, AvgConfidence: 0.5},
		}
	}

	useClassifier := a.classifier != nil && a.classifier.IsEnabled()

	var polaritySum, subjectivitySum, confidenceSum float64
	scored, confidences, positives := 0, 0, 0

	for _, text := range texts {
		if text == "" {
			continue
		}

		s := Polarity(text)
		polaritySum += s.Polarity
		subjectivitySum += s.Subjectivity
		scored++

		if useClassifier {
			c := a.classifier.Classify(ctx, text)
			if c.Label == LabelPositive {
				positives++
			}
			confidenceSum += c.Score
			confidences++
		}
	}

	data := models.SentimentData{
		Transformer: models.TransformerScores{
			PositivePercentage: float64(positives) / float64(len(texts)) * 100,
			AvgConfidence:      0.5,
		},
	}
	if scored > 0 {
		data.TextBlob.AvgPolarity = polaritySum / float64(scored)
		data.TextBlob.AvgSubjectivity = subjectivitySum / float64(scored)
	}
	if confidences > 0 {
		data.Transformer.AvgConfidence = confidenceSum / float64(confidences)
	}
	return data
}

// Mood maps an average polarity to "positive", "negative" or "neutral"
func Mood(avgPolarity float64) string {
	switch {
	case avgPolarity > PositiveThreshold:
		return "positive"
	case avgPolarity < NegativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}
