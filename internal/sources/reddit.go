package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/textproc"
	"github.com/sirupsen/logrus"
)

const (
	redditSubredditLimit = 10
	redditHotPostLimit   = 25
)

// RedditSource implements Reddit API source
type RedditSource struct {
	clientID     string
	clientSecret string
	userAgent    string
	authURL      string
	apiURL       string
	client       *resty.Client
	accessToken  string
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListing[T any] struct {
	Data struct {
		Children []struct {
			Data T `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditSubreddit struct {
	DisplayName       string `json:"display_name"`
	Subscribers       int    `json:"subscribers"`
	PublicDescription string `json:"public_description"`
}

type redditPost struct {
	Title       string  `json:"title"`
	Subreddit   string  `json:"subreddit"`
	URL         string  `json:"url"`
	Created     float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

// NewRedditSource creates a new Reddit source
func NewRedditSource(clientID, clientSecret, userAgent string) *RedditSource {
	if userAgent == "" {
		userAgent = "trend_analyzer_script"
	}
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		authURL:      "https://www.reddit.com",
		apiURL:       "https://oauth.reddit.com",
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

// WithBaseURLs overrides the OAuth and API hosts
func (r *RedditSource) WithBaseURLs(authURL, apiURL string) *RedditSource {
	r.authURL = strings.TrimRight(authURL, "/")
	r.apiURL = strings.TrimRight(apiURL, "/")
	return r
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

func (r *RedditSource) IsEnabled() bool {
	return r.clientID != "" && r.clientSecret != ""
}

// Collect fetches trending subreddits and hot posts from r/all. With keywords
// both lists come from search and posts are kept only when their title
// mentions a keyword.
func (r *RedditSource) Collect(ctx context.Context, keywords []string) (*models.PlatformData, error) {
	if !r.IsEnabled() {
		logrus.Debug("Reddit source disabled - missing credentials")
		return nil, nil
	}

	if err := r.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("reddit authentication failed: %w", err)
	}

	subreddits, err := r.trendingSubreddits(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending subreddits: %w", err)
	}

	posts, err := r.hotPosts(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hot posts: %w", err)
	}

	if len(keywords) > 0 {
		posts = filterPosts(posts, keywords)
	}

	logrus.Infof("Collected %d subreddits and %d hot posts from Reddit", len(subreddits), len(posts))

	return &models.PlatformData{
		Reddit: &models.RedditData{
			TrendingSubreddits: subreddits,
			HotPosts:           posts,
		},
	}, nil
}

func (r *RedditSource) authenticate(ctx context.Context) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", r.userAgent).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post(r.authURL + "/api/v1/access_token")

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("reddit auth returned status %d", resp.StatusCode())
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return err
	}

	if authResp.AccessToken == "" {
		return fmt.Errorf("reddit auth returned no access token")
	}

	r.accessToken = authResp.AccessToken
	return nil
}

func (r *RedditSource) trendingSubreddits(ctx context.Context, keywords []string) ([]models.Subreddit, error) {
	path := "/subreddits/popular"
	params := map[string]string{"limit": fmt.Sprint(redditSubredditLimit)}
	if len(keywords) > 0 {
		path = "/subreddits/search"
		params["q"] = searchQuery(keywords)
	}

	var listing redditListing[redditSubreddit]
	if err := r.get(ctx, path, params, &listing); err != nil {
		return nil, err
	}

	subreddits := make([]models.Subreddit, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		subreddits = append(subreddits, models.Subreddit{
			Name:        child.Data.DisplayName,
			Subscribers: child.Data.Subscribers,
			Description: child.Data.PublicDescription,
		})
	}
	return subreddits, nil
}

func (r *RedditSource) hotPosts(ctx context.Context, keywords []string) ([]models.RedditPost, error) {
	path := "/r/all/hot"
	params := map[string]string{"limit": fmt.Sprint(redditHotPostLimit)}
	if len(keywords) > 0 {
		path = "/r/all/search"
		params["q"] = searchQuery(keywords)
		params["sort"] = "hot"
	}

	var listing redditListing[redditPost]
	if err := r.get(ctx, path, params, &listing); err != nil {
		return nil, err
	}

	posts := make([]models.RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		posts = append(posts, models.RedditPost{
			Title:      p.Title,
			Subreddit:  p.Subreddit,
			Score:      p.Score,
			Comments:   p.NumComments,
			URL:        p.URL,
			CreatedUTC: time.Unix(int64(p.Created), 0).UTC(),
		})
	}
	return posts, nil
}

func (r *RedditSource) get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.accessToken).
		SetHeader("User-Agent", r.userAgent).
		SetQueryParams(params).
		Get(r.apiURL + path)

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	return json.Unmarshal(resp.Body(), out)
}

func filterPosts(posts []models.RedditPost, keywords []string) []models.RedditPost {
	filtered := []models.RedditPost{}
	for _, post := range posts {
		if textproc.IsDomainRelated(post.Title, keywords) {
			filtered = append(filtered, post)
		}
	}
	return filtered
}

func searchQuery(keywords []string) string {
	return strings.Join(keywords, " OR ")
}
