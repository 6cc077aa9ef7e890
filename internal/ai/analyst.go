package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	promptTopItems    = 10
	promptSampleItems = 5
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Analyst turns trend snapshots into LLM commentary and video prompts
type Analyst struct {
	generator     Generator
	analysisModel string
	promptModel   string
	now           func() time.Time
}

// NewAnalyst creates an analyst. A nil generator disables all AI features.
func NewAnalyst(generator Generator, analysisModel, promptModel string) *Analyst {
	return &Analyst{
		generator:     generator,
		analysisModel: analysisModel,
		promptModel:   promptModel,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// IsEnabled reports whether a generator is configured
func (a *Analyst) IsEnabled() bool {
	return a.generator != nil
}

// Analyze asks the model for insights on a snapshot. It never fails: every
// problem is reported through the Error field of the returned analysis.
func (a *Analyst) Analyze(ctx context.Context, snapshot *models.TrendSnapshot, domain string) *models.AIAnalysis {
	if !a.IsEnabled() {
		logrus.Warn("Gemini AI not available, skipping AI analysis")
		return &models.AIAnalysis{Error: ErrNotConfigured.Error(), Timestamp: a.now()}
	}

	logrus.Info("Sending request to Gemini AI for trend analysis")
	text, err := a.generator.Generate(ctx, a.analysisModel, buildAnalysisPrompt(snapshot, domain))
	if err != nil {
		logrus.Errorf("Error generating AI analysis: %v", err)
		return &models.AIAnalysis{
			Error:     fmt.Sprintf("Failed to generate AI analysis: %v", err),
			Timestamp: a.now(),
		}
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		logrus.Errorf("Failed to parse Gemini response as JSON: %v", err)
		return &models.AIAnalysis{
			Error:       "Could not parse AI response as JSON",
			RawResponse: text,
			Timestamp:   a.now(),
		}
	}

	analysis.Timestamp = a.now()
	logrus.Info("Successfully generated AI analysis")
	return analysis
}

// VideoPrompt drafts a trend-aware video concept for the product and then
// condenses it into a short, generic scene description.
func (a *Analyst) VideoPrompt(ctx context.Context, req *models.VideoRequest, snapshot *models.TrendSnapshot) (string, error) {
	if !a.IsEnabled() {
		return "", ErrNotConfigured
	}

	trends, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode trends: %w", err)
	}

	draft, err := a.generator.Generate(ctx, a.promptModel, buildVideoPrompt(req, string(trends)))
	if err != nil {
		return "", fmt.Errorf("failed to draft video prompt: %w", err)
	}
	logrus.Debugf("Video prompt draft: %s", draft)

	simplified, err := a.generator.Generate(ctx, a.promptModel, buildSimplifyPrompt(draft))
	if err != nil {
		return "", fmt.Errorf("failed to simplify video prompt: %w", err)
	}

	simplified = strings.TrimSpace(simplified)
	logrus.Infof("Simplified video prompt: %s", simplified)
	return simplified, nil
}

// parseAnalysis reads the first ```json fenced block, or the whole text when
// there is none.
func parseAnalysis(text string) (*models.AIAnalysis, error) {
	payload := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		payload = m[1]
	}

	var resp analysisResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

func buildAnalysisPrompt(snapshot *models.TrendSnapshot, domain string) string {
	domainContext := "across social media"
	if domain != "" {
		domainContext = fmt.Sprintf("in the %s domain", domain)
	}

	topTrends := snapshot.TopTrends
	if len(topTrends) > promptTopItems {
		topTrends = topTrends[:promptTopItems]
	}

	mood := snapshot.Sentiment.OverallMood
	if mood == "" {
		mood = "neutral"
	}

	var reddit, youtube, bluesky []string
	if pd := snapshot.PlatformData; pd != nil {
		if pd.Reddit != nil {
			for i, p := range pd.Reddit.HotPosts {
				if i >= promptSampleItems {
					break
				}
				reddit = append(reddit, p.Title)
			}
		}
		if pd.YouTube != nil {
			for i, v := range pd.YouTube.TrendingVideos {
				if i >= promptSampleItems {
					break
				}
				youtube = append(youtube, v.Title)
			}
		}
		if pd.Bluesky != nil {
			for i, p := range pd.Bluesky.PopularPosts {
				if i >= promptSampleItems {
					break
				}
				bluesky = append(bluesky, p.Text)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "As a social media trend analyst, analyze the following trending data %s and provide insights:\n\n", domainContext)
	fmt.Fprintf(&b, "Top Hashtags: %s\n\n", joinOrNone(models.TopKeys(snapshot.TopHashtags, promptTopItems)))
	fmt.Fprintf(&b, "Top Keywords: %s\n\n", joinOrNone(models.TopKeys(snapshot.TopWords, promptTopItems)))
	fmt.Fprintf(&b, "Top Trends: %s\n\n", joinOrNone(topTrends))
	fmt.Fprintf(&b, "Overall Sentiment: %s\n\n", mood)
	b.WriteString("Sample Content:\n")
	fmt.Fprintf(&b, "- Reddit: %s\n", quotedOrNone(reddit))
	fmt.Fprintf(&b, "- YouTube: %s\n", quotedOrNone(youtube))
	fmt.Fprintf(&b, "- Bluesky: %s\n\n", quotedOrNone(bluesky))
	b.WriteString("Based on this data, provide:\n")
	fmt.Fprintf(&b, "1. Key insights about current trends %s (3-5 bullet points)\n", domainContext)
	b.WriteString("2. Emerging patterns or themes\n")
	b.WriteString("3. User sentiment analysis and what it reveals\n")
	b.WriteString("4. Content strategy recommendations based on these trends\n")
	b.WriteString("5. Predicted trend trajectory for the next 24-48 hours\n\n")
	b.WriteString("Format your response as JSON with the following keys:\n")
	b.WriteString(`- "key_insights": array of strings` + "\n")
	b.WriteString(`- "emerging_patterns": array of strings` + "\n")
	b.WriteString(`- "sentiment_analysis": string` + "\n")
	b.WriteString(`- "content_recommendations": array of strings` + "\n")
	b.WriteString(`- "trend_prediction": string` + "\n")
	b.WriteString(`- "summary": string (brief overall summary)` + "\n")
	return b.String()
}

func buildVideoPrompt(req *models.VideoRequest, trendsJSON string) string {
	return fmt.Sprintf(`Create a concise yet detailed video generation prompt that effectively showcases the product using the information provided below. The video should be cinematic, engaging, and visually rich, incorporating relevant current trends to enhance appeal. The final output should describe a short-form video concept, ideally under 5 seconds, that feels modern and compelling.

PRODUCT INFORMATION:

Product Name: %s
Description: %s
Suggested Scenes or Key Moments: %s

CURRENT TRENDS TO INCORPORATE:
%s

Make sure the prompt is visually descriptive, trend-aware, and tailored to a short video format suitable for platforms like TikTok, Instagram Reels, or YouTube Shorts.
Dont give any audio or music descriptions, video will be silent.
`, req.ProductName, req.Description, req.Scenes, trendsJSON)
}

func buildSimplifyPrompt(draft string) string {
	return fmt.Sprintf(`Simplify %s. Reduce it to 10 words, it should be very concise and clear. It is a Ad.
Prompt should be like: an object performing an action in a specific environment. It should be generalized, not product name like "a cat is walking".
`, draft)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None available"
	}
	return strings.Join(items, ", ")
}

func quotedOrNone(items []string) string {
	if len(items) == 0 {
		return "None available"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
