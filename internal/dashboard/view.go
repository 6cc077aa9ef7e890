package dashboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

const (
	maxHashtagBars = 10
	maxWordBars    = 8
	barWidth       = 30
)

// Bar is one row of a horizontal bar chart
type Bar struct {
	Label string
	Count int
}

// HashtagBars returns the ten most used hashtags, labelled with a leading #
func HashtagBars(s *models.TrendSnapshot) []Bar {
	if s == nil {
		return nil
	}
	return topBars(s.TopHashtags, maxHashtagBars, "#")
}

// WordBars returns the eight most frequent words
func WordBars(s *models.TrendSnapshot) []Bar {
	if s == nil {
		return nil
	}
	return topBars(s.TopWords, maxWordBars, "")
}

func topBars(counts map[string]int, n int, prefix string) []Bar {
	var bars []Bar
	for i, rc := range models.Ranked(counts) {
		if i >= n {
			break
		}
		bars = append(bars, Bar{Label: prefix + rc.Key, Count: rc.Count})
	}
	return bars
}

// Gauges are the sentiment figures shown as percentages
type Gauges struct {
	Positive     int     // rounded transformer positive percentage
	Negative     float64 // 100 - positive, unrounded
	Confidence   float64 // transformer average confidence, 0..100
	Subjectivity float64 // lexicon subjectivity, 0..100
	Polarity     float64 // lexicon polarity mapped from -1..1 onto 0..100
}

// GaugesFor computes the gauge values; a nil snapshot gives zero positivity
// and a neutral polarity
func GaugesFor(s *models.TrendSnapshot) Gauges {
	if s == nil {
		return Gauges{Polarity: 50}
	}
	t := s.Sentiment.Data.Transformer
	tb := s.Sentiment.Data.TextBlob
	return Gauges{
		Positive:     int(math.Round(t.PositivePercentage)),
		Negative:     100 - t.PositivePercentage,
		Confidence:   t.AvgConfidence * 100,
		Subjectivity: tb.AvgSubjectivity * 100,
		Polarity:     tb.AvgPolarity*50 + 50,
	}
}

// Insights are the AI analysis texts with fallbacks for missing fields
type Insights struct {
	Summary           string
	SentimentAnalysis string
	TrendPrediction   string
	KeyInsights       []string
	EmergingPatterns  []string
	Recommendations   []string
	Error             string
}

// InsightsFor fills every missing analysis field with a placeholder text
func InsightsFor(s *models.TrendSnapshot) Insights {
	in := Insights{
		Summary:           "No summary available",
		SentimentAnalysis: "No sentiment analysis available",
		TrendPrediction:   "No prediction available",
	}
	if s == nil || s.AIAnalysis == nil {
		return in
	}
	a := s.AIAnalysis
	if a.Summary != "" {
		in.Summary = a.Summary
	}
	if a.SentimentAnalysis != "" {
		in.SentimentAnalysis = a.SentimentAnalysis
	}
	if a.TrendPrediction != "" {
		in.TrendPrediction = a.TrendPrediction
	}
	in.KeyInsights = a.KeyInsights
	in.EmergingPatterns = a.EmergingPatterns
	in.Recommendations = a.ContentRecommendations
	in.Error = a.Error
	return in
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func renderBars(theme Theme, bars []Bar) string {
	if len(bars) == 0 {
		return theme.Faint().Render("no data")
	}
	labelWidth, peak := 0, 0
	for _, b := range bars {
		labelWidth = max(labelWidth, len(b.Label))
		peak = max(peak, b.Count)
	}

	var sb strings.Builder
	for _, b := range bars {
		n := 1
		if peak > 0 {
			n = max(b.Count*barWidth/peak, 1)
		}
		fmt.Fprintf(&sb, "%-*s %s %d\n", labelWidth, b.Label, theme.Bar().Render(strings.Repeat("█", n)), b.Count)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderMeter(theme Theme, label string, pct float64) string {
	pct = math.Max(0, math.Min(100, pct))
	filled := int(math.Round(pct / 100 * barWidth))
	return fmt.Sprintf("%-13s %s%s %5.1f%%", label,
		theme.Bar().Render(strings.Repeat("█", filled)),
		theme.Faint().Render(strings.Repeat("░", barWidth-filled)),
		pct)
}

func renderGauges(theme Theme, s *models.TrendSnapshot) string {
	g := GaugesFor(s)
	lines := []string{
		theme.Heading().Render(fmt.Sprintf("Positive %d%%", g.Positive)),
		renderMeter(theme, "positive", float64(g.Positive)),
		renderMeter(theme, "negative", g.Negative),
		renderMeter(theme, "confidence", g.Confidence),
		renderMeter(theme, "subjectivity", g.Subjectivity),
		renderMeter(theme, "polarity", g.Polarity),
	}
	return strings.Join(lines, "\n")
}

func renderList(theme Theme, title string, items []string) string {
	var sb strings.Builder
	sb.WriteString(theme.Heading().Render(title))
	if len(items) == 0 {
		sb.WriteString("\n" + theme.Faint().Render("  none"))
	}
	for _, item := range items {
		sb.WriteString("\n  • " + item)
	}
	return sb.String()
}

func renderTrends(theme Theme, s *models.TrendSnapshot) string {
	if s == nil {
		return renderList(theme, "Top Trends", nil)
	}
	items := make([]string, len(s.TopTrends))
	for i, t := range s.TopTrends {
		items[i] = fmt.Sprintf("%d. %s", i+1, t)
	}
	return renderList(theme, "Top Trends", items)
}

func renderInsights(theme Theme, s *models.TrendSnapshot, width int) string {
	in := InsightsFor(s)
	wrap := theme.Faint().Width(max(width-4, 20))

	sections := []string{
		theme.Heading().Render("Summary") + "\n" + wrap.Render(in.Summary),
	}
	if in.Error != "" {
		sections = append(sections, theme.Error().Render("AI analysis unavailable: "+in.Error))
	}
	sections = append(sections,
		renderList(theme, "Key Insights", in.KeyInsights),
		renderList(theme, "Emerging Patterns", in.EmergingPatterns),
		renderList(theme, "Content Recommendations", in.Recommendations),
		theme.Heading().Render("Sentiment Analysis")+"\n"+wrap.Render(in.SentimentAnalysis),
		theme.Heading().Render("Trend Prediction")+"\n"+wrap.Render(in.TrendPrediction),
	)
	return strings.Join(sections, "\n\n")
}
