package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	youTubeKeywordResults = 10
	youTubeMaxVideos      = 25
)

// YouTubeSource implements YouTube Data API source
type YouTubeSource struct {
	apiKey  string
	baseURL string
	client  *resty.Client
}

type youTubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type youTubeVideosResponse struct {
	Items []youTubeVideo `json:"items"`
}

type youTubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

// NewYouTubeSource creates a new YouTube source
func NewYouTubeSource(apiKey string) *YouTubeSource {
	return &YouTubeSource{
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/youtube/v3",
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "trendreel/1.0"),
	}
}

// WithBaseURL overrides the Data API host
func (y *YouTubeSource) WithBaseURL(baseURL string) *YouTubeSource {
	y.baseURL = strings.TrimRight(baseURL, "/")
	return y
}

func (y *YouTubeSource) GetName() string {
	return "youtube"
}

func (y *YouTubeSource) IsEnabled() bool {
	return y.apiKey != ""
}

// Collect returns the US most-popular chart, or the most viewed videos per
// keyword when keywords are given. Results are deduplicated and capped at 25.
func (y *YouTubeSource) Collect(ctx context.Context, keywords []string) (*models.PlatformData, error) {
	if !y.IsEnabled() {
		logrus.Debug("YouTube source disabled - missing API key")
		return nil, nil
	}

	var videos []models.Video

	if len(keywords) > 0 {
		for _, keyword := range keywords {
			found, err := y.searchKeyword(ctx, keyword)
			if err != nil {
				logrus.Errorf("Failed to search YouTube videos for keyword '%s': %v", keyword, err)
				continue
			}
			videos = append(videos, found...)
		}
	} else {
		popular, err := y.mostPopular(ctx)
		if err != nil {
			return nil, err
		}
		videos = popular
	}

	videos = y.deduplicateVideos(videos)
	if len(videos) > youTubeMaxVideos {
		videos = videos[:youTubeMaxVideos]
	}

	logrus.Infof("Collected %d videos from YouTube", len(videos))

	return &models.PlatformData{
		YouTube: &models.YouTubeData{TrendingVideos: videos},
	}, nil
}

func (y *YouTubeSource) searchKeyword(ctx context.Context, keyword string) ([]models.Video, error) {
	var search youTubeSearchResponse
	err := y.get(ctx, "/search", map[string]string{
		"part":       "snippet",
		"q":          keyword,
		"type":       "video",
		"order":      "viewCount",
		"maxResults": strconv.Itoa(youTubeKeywordResults),
	}, &search)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var details youTubeVideosResponse
	err = y.get(ctx, "/videos", map[string]string{
		"part": "snippet,statistics",
		"id":   strings.Join(ids, ","),
	}, &details)
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(details.Items))
	for _, item := range details.Items {
		v := toVideo(item)
		v.Keyword = keyword
		videos = append(videos, v)
	}
	return videos, nil
}

func (y *YouTubeSource) mostPopular(ctx context.Context) ([]models.Video, error) {
	var resp youTubeVideosResponse
	err := y.get(ctx, "/videos", map[string]string{
		"part":       "snippet,statistics",
		"chart":      "mostPopular",
		"regionCode": "US",
		"maxResults": strconv.Itoa(youTubeMaxVideos),
	}, &resp)
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, toVideo(item))
	}
	return videos, nil
}

func (y *YouTubeSource) get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("key", y.apiKey).
		Get(y.baseURL + path)

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("youtube API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to parse YouTube response: %w", err)
	}
	return nil
}

func toVideo(item youTubeVideo) models.Video {
	return models.Video{
		VideoID:      item.ID,
		Title:        item.Snippet.Title,
		Channel:      item.Snippet.ChannelTitle,
		Description:  item.Snippet.Description,
		PublishedAt:  item.Snippet.PublishedAt,
		ViewCount:    parseCount(item.Statistics.ViewCount),
		LikeCount:    parseCount(item.Statistics.LikeCount),
		CommentCount: parseCount(item.Statistics.CommentCount),
	}
}

// Statistics arrive as decimal strings and are absent when hidden
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (y *YouTubeSource) deduplicateVideos(videos []models.Video) []models.Video {
	seen := make(map[string]bool)
	unique := []models.Video{}

	for _, video := range videos {
		if !seen[video.VideoID] {
			seen[video.VideoID] = true
			unique = append(unique, video)
		}
	}

	return unique
}
