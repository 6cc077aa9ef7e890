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
	"github.com/pixelflowlabs/trendreel/internal/textproc"
	"github.com/sirupsen/logrus"
)

const (
	whatsHotFeed          = "at://did:plc:z72i7hdynmk6r22z27h6tvur/app.bsky.feed.generator/whats-hot"
	blueskyFeedLimit      = 100
	blueskyTimelineLimit  = 25
	blueskyTopHashtags    = 20
	blueskyDefaultService = "https://bsky.social/xrpc"
)

// BlueskySource reads the "What's Hot" feed over XRPC
type BlueskySource struct {
	identifier string
	password   string
	baseURL    string
	client     *resty.Client
}

type blueskySession struct {
	AccessJwt string `json:"accessJwt"`
	Handle    string `json:"handle"`
}

type blueskyFeedResponse struct {
	Feed []struct {
		Post struct {
			Record      json.RawMessage `json:"record"`
			LikeCount   int             `json:"likeCount"`
			ReplyCount  int             `json:"replyCount"`
			RepostCount int             `json:"repostCount"`
		} `json:"post"`
	} `json:"feed"`
}

type blueskyRecord struct {
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// NewBlueskySource creates a new Bluesky source
func NewBlueskySource(identifier, password string) *BlueskySource {
	return &BlueskySource{
		identifier: identifier,
		password:   password,
		baseURL:    blueskyDefaultService,
		client:     resty.New().SetTimeout(30 * time.Second),
	}
}

// WithBaseURL overrides the XRPC service endpoint
func (b *BlueskySource) WithBaseURL(baseURL string) *BlueskySource {
	b.baseURL = strings.TrimRight(baseURL, "/")
	return b
}

func (b *BlueskySource) GetName() string {
	return "bluesky"
}

func (b *BlueskySource) IsEnabled() bool {
	return b.identifier != "" && b.password != ""
}

// Collect reads popular posts and counts their hashtags. The trending feed is
// tried first and the home timeline is used when it fails. Hashtags are counted
// over every post, while posts themselves are kept only when domain related.
func (b *BlueskySource) Collect(ctx context.Context, keywords []string) (*models.PlatformData, error) {
	if !b.IsEnabled() {
		logrus.Debug("Bluesky source disabled - missing credentials")
		return nil, nil
	}

	session, err := b.createSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("bluesky login failed: %w", err)
	}

	feed, err := b.fetch(ctx, session, "app.bsky.feed.getFeed", map[string]string{
		"feed":  whatsHotFeed,
		"limit": strconv.Itoa(blueskyFeedLimit),
	})
	if err != nil {
		logrus.Warnf("Failed to get trending feed, falling back to timeline: %v", err)

		feed, err = b.fetch(ctx, session, "app.bsky.feed.getTimeline", map[string]string{
			"limit": strconv.Itoa(blueskyTimelineLimit),
		})
		if err != nil {
			logrus.Errorf("Failed to fetch timeline: %v", err)
			feed = &blueskyFeedResponse{}
		}
	}

	posts, hashtags := b.processFeed(feed, keywords)

	logrus.Infof("Processed %d Bluesky posts and found %d unique hashtags", len(posts), len(hashtags))

	return &models.PlatformData{
		Bluesky: &models.BlueskyData{
			PopularPosts:     posts,
			TrendingHashtags: hashtags,
		},
	}, nil
}

func (b *BlueskySource) createSession(ctx context.Context) (*blueskySession, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"identifier": b.identifier,
			"password":   b.password,
		}).
		Post(b.baseURL + "/com.atproto.server.createSession")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("createSession returned status %d", resp.StatusCode())
	}

	var session blueskySession
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (b *BlueskySource) fetch(ctx context.Context, session *blueskySession, method string, params map[string]string) (*blueskyFeedResponse, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetAuthToken(session.AccessJwt).
		SetHeader("Accept-Language", "en").
		SetQueryParams(params).
		Get(b.baseURL + "/" + method)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%s returned status %d", method, resp.StatusCode())
	}

	var feed blueskyFeedResponse
	if err := json.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}

	logrus.Infof("Successfully retrieved Bluesky %s with %d items", method, len(feed.Feed))
	return &feed, nil
}

func (b *BlueskySource) processFeed(feed *blueskyFeedResponse, keywords []string) ([]models.BlueskyPost, map[string]int) {
	posts := []models.BlueskyPost{}
	var hashtags []string

	for _, item := range feed.Feed {
		if len(item.Post.Record) == 0 {
			logrus.Warn("Post missing record attribute")
			continue
		}

		var record blueskyRecord
		if err := json.Unmarshal(item.Post.Record, &record); err != nil {
			logrus.Warnf("Error processing individual Bluesky post: %v", err)
			continue
		}

		postTags := textproc.ExtractHashtags(record.Text)
		hashtags = append(hashtags, postTags...)

		if len(keywords) > 0 && !textproc.IsDomainRelated(record.Text, keywords) {
			continue
		}

		if postTags == nil {
			postTags = []string{}
		}
		posts = append(posts, models.BlueskyPost{
			Text:      record.Text,
			CreatedAt: record.CreatedAt,
			Likes:     item.Post.LikeCount,
			Replies:   item.Post.ReplyCount,
			Reposts:   item.Post.RepostCount,
			Hashtags:  postTags,
		})
	}

	if len(keywords) > 0 {
		hashtags = filterHashtags(hashtags, keywords)
	}

	return posts, textproc.CountTop(hashtags, blueskyTopHashtags)
}

// filterHashtags keeps tags that contain any keyword, case-insensitively
func filterHashtags(tags []string, keywords []string) []string {
	var kept []string
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				kept = append(kept, tag)
				break
			}
		}
	}
	return kept
}
