package models

import (
	"sort"
	"time"
)

// TrendSnapshot is one run of the trend analyzer as stored and served by /api/trends
type TrendSnapshot struct {
	ID           string         `json:"_id,omitempty" bson:"_id,omitempty"`
	Timestamp    time.Time      `json:"timestamp" bson:"timestamp"`
	Domain       string         `json:"domain,omitempty" bson:"domain,omitempty"`
	TopHashtags  map[string]int `json:"top_hashtags" bson:"top_hashtags"`
	TopWords     map[string]int `json:"top_words" bson:"top_words"`
	TopTrends    []string       `json:"top_trends" bson:"top_trends"`
	Sentiment    Sentiment      `json:"sentiment" bson:"sentiment"`
	AIAnalysis   *AIAnalysis    `json:"ai_analysis,omitempty" bson:"ai_analysis,omitempty"`
	PlatformData *PlatformData  `json:"platform_data,omitempty" bson:"platform_data,omitempty"`
}

// Sentiment holds the overall mood and the per-model scores
type Sentiment struct {
	OverallMood string        `json:"overall_mood" bson:"overall_mood"` // "positive", "negative", "neutral"
	Data        SentimentData `json:"data" bson:"data"`
}

type SentimentData struct {
	TextBlob    LexiconScores     `json:"textblob" bson:"textblob"`
	Transformer TransformerScores `json:"transformer" bson:"transformer"`
}

type LexiconScores struct {
	AvgPolarity     float64 `json:"avg_polarity" bson:"avg_polarity"`
	AvgSubjectivity float64 `json:"avg_subjectivity" bson:"avg_subjectivity"`
}

type TransformerScores struct {
	PositivePercentage float64 `json:"positive_percentage" bson:"positive_percentage"`
	AvgConfidence      float64 `json:"avg_confidence" bson:"avg_confidence"`
}

// AIAnalysis is the LLM-generated commentary on a snapshot.
// Error is set instead of the content fields when generation failed.
type AIAnalysis struct {
	KeyInsights            []string  `json:"key_insights,omitempty" bson:"key_insights,omitempty"`
	EmergingPatterns       []string  `json:"emerging_patterns,omitempty" bson:"emerging_patterns,omitempty"`
	SentimentAnalysis      string    `json:"sentiment_analysis,omitempty" bson:"sentiment_analysis,omitempty"`
	ContentRecommendations []string  `json:"content_recommendations,omitempty" bson:"content_recommendations,omitempty"`
	TrendPrediction        string    `json:"trend_prediction,omitempty" bson:"trend_prediction,omitempty"`
	Summary                string    `json:"summary,omitempty" bson:"summary,omitempty"`
	Timestamp              time.Time `json:"timestamp" bson:"timestamp"`
	Error                  string    `json:"error,omitempty" bson:"error,omitempty"`
	RawResponse            string    `json:"raw_response,omitempty" bson:"raw_response,omitempty"`
}

// PlatformData is the raw per-platform material a snapshot was computed from
type PlatformData struct {
	Reddit  *RedditData  `json:"reddit,omitempty" bson:"reddit,omitempty"`
	YouTube *YouTubeData `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Bluesky *BlueskyData `json:"bluesky,omitempty" bson:"bluesky,omitempty"`
}

// Merge copies every non-nil platform block of other into p
func (p *PlatformData) Merge(other *PlatformData) {
	if other == nil {
		return
	}
	if other.Reddit != nil {
		p.Reddit = other.Reddit
	}
	if other.YouTube != nil {
		p.YouTube = other.YouTube
	}
	if other.Bluesky != nil {
		p.Bluesky = other.Bluesky
	}
}

type RedditData struct {
	TrendingSubreddits []Subreddit  `json:"trending_subreddits" bson:"trending_subreddits"`
	HotPosts           []RedditPost `json:"hot_posts" bson:"hot_posts"`
}

type Subreddit struct {
	Name        string `json:"name" bson:"name"`
	Subscribers int    `json:"subscribers" bson:"subscribers"`
	Description string `json:"description" bson:"description"`
}

type RedditPost struct {
	Title      string    `json:"title" bson:"title"`
	Subreddit  string    `json:"subreddit" bson:"subreddit"`
	Score      int       `json:"score" bson:"score"`
	Comments   int       `json:"comments" bson:"comments"`
	URL        string    `json:"url" bson:"url"`
	CreatedUTC time.Time `json:"created_utc" bson:"created_utc"`
}

type YouTubeData struct {
	TrendingVideos []Video `json:"trending_videos" bson:"trending_videos"`
}

type Video struct {
	VideoID      string `json:"video_id" bson:"video_id"`
	Title        string `json:"title" bson:"title"`
	Channel      string `json:"channel" bson:"channel"`
	Description  string `json:"description" bson:"description"`
	PublishedAt  string `json:"published_at" bson:"published_at"`
	ViewCount    int64  `json:"view_count" bson:"view_count"`
	LikeCount    int64  `json:"like_count" bson:"like_count"`
	CommentCount int64  `json:"comment_count" bson:"comment_count"`
	Keyword      string `json:"keyword,omitempty" bson:"keyword,omitempty"`
}

type BlueskyData struct {
	PopularPosts     []BlueskyPost  `json:"popular_posts" bson:"popular_posts"`
	TrendingHashtags map[string]int `json:"trending_hashtags" bson:"trending_hashtags"`
}

type BlueskyPost struct {
	Text      string   `json:"text" bson:"text"`
	CreatedAt string   `json:"created_at" bson:"created_at"`
	Likes     int      `json:"likes" bson:"likes"`
	Replies   int      `json:"replies" bson:"replies"`
	Reposts   int      `json:"reposts" bson:"reposts"`
	Hashtags  []string `json:"hashtags" bson:"hashtags"`
}

// VideoRequest is the body of POST /api/generate-video
type VideoRequest struct {
	ProductName string `json:"productName"`
	Description string `json:"description"`
	Scenes      string `json:"scenes"`

	// Optional generation parameters forwarded to the video backend
	NegativePrompt    *string  `json:"negative_prompt,omitempty"`
	NumInferenceSteps *int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     *float64 `json:"guidance_scale,omitempty"`
	Height            *int     `json:"height,omitempty"`
	Width             *int     `json:"width,omitempty"`
	NumFrames         *int     `json:"num_frames,omitempty"`
	FPS               *int     `json:"fps,omitempty"`
}

// Complete reports whether the three form fields are all non-empty
func (r *VideoRequest) Complete() bool {
	return notBlank(r.ProductName) && notBlank(r.Description) && notBlank(r.Scenes)
}

// VideoResult is what a generation produced: a remote URL or a stored file
type VideoResult struct {
	VideoURL     string `json:"videoUrl,omitempty"`
	Prompt       string `json:"prompt"`
	FileName     string `json:"fileName,omitempty"`
	DownloadName string `json:"downloadName,omitempty"`
	Placeholder  bool   `json:"placeholder,omitempty"`
}

// RankedCount is one entry of a frequency table
type RankedCount struct {
	Key   string
	Count int
}

// Ranked orders a frequency map by count descending, key ascending on ties
func Ranked(counts map[string]int) []RankedCount {
	ranked := make([]RankedCount, 0, len(counts))
	for k, c := range counts {
		ranked = append(ranked, RankedCount{Key: k, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})
	return ranked
}

// TopKeys returns up to n keys of counts in Ranked order
func TopKeys(counts map[string]int, n int) []string {
	var keys []string
	for i, rc := range Ranked(counts) {
		if i >= n {
			break
		}
		keys = append(keys, rc.Key)
	}
	return keys
}

func notBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}
