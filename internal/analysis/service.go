package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/ai"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/notifications"
	"github.com/pixelflowlabs/trendreel/internal/sentiment"
	"github.com/pixelflowlabs/trendreel/internal/sources"
	"github.com/pixelflowlabs/trendreel/internal/storage"
	"github.com/pixelflowlabs/trendreel/internal/textproc"
	"github.com/sirupsen/logrus"
)

const (
	topWordCount    = 10
	topHashtagCount = 30
	trendsPerSource = 5
	runTimeout      = 10 * time.Minute
)

// ErrRunInProgress is returned when Run is called while another run is active
var ErrRunInProgress = errors.New("trend analysis already running")

// Service collects platform data and turns it into trend snapshots
type Service struct {
	config              *config.Config
	store               storage.TrendStore
	notificationService notifications.NotificationInterface
	sentiment           *sentiment.Analyzer
	analyst             *ai.Analyst
	sources             []sources.Source
	collector           *Collector
	metrics             *Metrics
	running             atomic.Bool
	mu                  sync.RWMutex
	now                 func() time.Time
}

// Metrics holds analyzer metrics
type Metrics struct {
	TotalRuns       int            `json:"total_runs"`
	LastRun         time.Time      `json:"last_run"`
	LastRunDuration string         `json:"last_run_duration"`
	LastSnapshotID  string         `json:"last_snapshot_id,omitempty"`
	LastMood        string         `json:"last_mood,omitempty"`
	SourceMetrics   map[string]int `json:"source_metrics"`
	ErrorCount      int            `json:"error_count"`
}

// NewService creates a new analysis service. notificationService and collector may be nil.
func NewService(cfg *config.Config, store storage.TrendStore, notificationService notifications.NotificationInterface,
	sentimentAnalyzer *sentiment.Analyzer, analyst *ai.Analyst, collector *Collector) *Service {
	if collector == nil {
		collector = NewCollector(nil)
	}

	service := &Service{
		config:              cfg,
		store:               store,
		notificationService: notificationService,
		sentiment:           sentimentAnalyzer,
		analyst:             analyst,
		collector:           collector,
		metrics: &Metrics{
			SourceMetrics: make(map[string]int),
		},
		now: func() time.Time { return time.Now().UTC() },
	}

	service.initializeSources()

	return service
}

func (s *Service) initializeSources() {
	s.sources = []sources.Source{
		sources.NewRedditSource(s.config.RedditClientID, s.config.RedditClientSecret, s.config.RedditUserAgent),
		sources.NewYouTubeSource(s.config.YouTubeAPIKey),
		sources.NewBlueskySource(s.config.BlueskyIdentifier, s.config.BlueskyPassword),
	}
}

// IsRunning reports whether an analysis is in progress
func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// Sources returns the configured collectors
func (s *Service) Sources() []sources.Source {
	return s.sources
}

type collectResult struct {
	source string
	data   *models.PlatformData
	err    error
}

// Run performs one analysis for domain, a comma-separated keyword list.
// An empty domain falls back to the configured one; if that is empty too,
// collectors return general trending content.
func (s *Service) Run(ctx context.Context, domain string) (*models.TrendSnapshot, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	if domain == "" {
		domain = s.config.Domain
	}
	keywords := config.SplitKeywords(domain)

	start := time.Now()
	if domain != "" {
		logrus.Infof("Starting trend analysis for domain: %s", domain)
	} else {
		logrus.Info("Starting trend analysis")
	}

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	platformData, sourceCounts, errorCount := s.collect(ctx, keywords)

	snapshot := s.buildSnapshot(ctx, domain, platformData)

	logrus.Info("Generating AI analysis of trends")
	snapshot.AIAnalysis = s.analyst.Analyze(ctx, snapshot, domain)

	id, err := s.store.Save(ctx, snapshot)
	if err != nil {
		logrus.Errorf("Failed to store trend analysis: %v", err)
		s.updateMetrics("", snapshot, sourceCounts, errorCount+1, time.Since(start))
		s.collector.Runs.WithLabelValues("failed").Inc()
		return snapshot, fmt.Errorf("failed to store trend analysis: %w", err)
	}

	if s.notificationService != nil && s.notificationService.IsEnabled() {
		if err := s.notificationService.SendDigest(ctx, snapshot); err != nil {
			logrus.Errorf("Failed to send digest: %v", err)
			errorCount++
		}
	}

	s.updateMetrics(id, snapshot, sourceCounts, errorCount, time.Since(start))
	s.collector.Runs.WithLabelValues("succeeded").Inc()

	logrus.Infof("Trend analysis with AI insights completed in %v", time.Since(start))
	return snapshot, nil
}

// collect fetches from every enabled source concurrently
func (s *Service) collect(ctx context.Context, keywords []string) (*models.PlatformData, map[string]int, int) {
	var wg sync.WaitGroup
	results := make(chan collectResult, len(s.sources))

	for _, source := range s.sources {
		if !source.IsEnabled() {
			logrus.Warnf("%s credentials not configured, skipping", source.GetName())
			continue
		}

		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			logrus.Infof("Fetching trends from %s", src.GetName())
			data, err := src.Collect(ctx, keywords)
			results <- collectResult{source: src.GetName(), data: data, err: err}
		}(source)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	platformData := &models.PlatformData{}
	sourceCounts := make(map[string]int)
	errorCount := 0

	for result := range results {
		if result.err != nil {
			logrus.Errorf("Error fetching from %s: %v", result.source, result.err)
			s.collector.SourceErrors.WithLabelValues(result.source).Inc()
			errorCount++
			continue
		}

		count := countItems(result.data)
		logrus.Infof("Collected %d items from %s", count, result.source)
		sourceCounts[result.source] = count
		s.collector.SourceItems.WithLabelValues(result.source).Set(float64(count))
		platformData.Merge(result.data)
	}

	return platformData, sourceCounts, errorCount
}

// buildSnapshot derives words, hashtags, sentiment and top trends from the collected data
func (s *Service) buildSnapshot(ctx context.Context, domain string, data *models.PlatformData) *models.TrendSnapshot {
	texts := gatherTexts(data)

	var hashtags []string
	if data.Bluesky != nil {
		for _, rc := range models.Ranked(data.Bluesky.TrendingHashtags) {
			hashtags = append(hashtags, rc.Key)
		}
	}
	for _, text := range texts {
		hashtags = append(hashtags, textproc.ExtractHashtags(text)...)
	}

	sentimentData := s.sentiment.Aggregate(ctx, texts)

	return &models.TrendSnapshot{
		Timestamp:   s.now(),
		Domain:      domain,
		TopHashtags: textproc.CountTop(hashtags, topHashtagCount),
		TopWords:    textproc.TopWords(texts, topWordCount),
		TopTrends:   topTrends(data),
		Sentiment: models.Sentiment{
			OverallMood: sentiment.Mood(sentimentData.TextBlob.AvgPolarity),
			Data:        sentimentData,
		},
		PlatformData: data,
	}
}

func gatherTexts(data *models.PlatformData) []string {
	var texts []string
	if data.Reddit != nil {
		for _, post := range data.Reddit.HotPosts {
			texts = append(texts, post.Title)
		}
	}
	if data.YouTube != nil {
		for _, video := range data.YouTube.TrendingVideos {
			texts = append(texts, video.Title, video.Description)
		}
	}
	if data.Bluesky != nil {
		for _, post := range data.Bluesky.PopularPosts {
			texts = append(texts, post.Text)
		}
	}
	return texts
}

func topTrends(data *models.PlatformData) []string {
	trends := []string{}
	if data.Reddit != nil {
		for i, sub := range data.Reddit.TrendingSubreddits {
			if i >= trendsPerSource {
				break
			}
			trends = append(trends, sub.Name)
		}
	}
	if data.YouTube != nil {
		for i, video := range data.YouTube.TrendingVideos {
			if i >= trendsPerSource {
				break
			}
			if video.Title == "" {
				continue
			}
			words := strings.Fields(video.Title)
			if len(words) > 3 {
				trends = append(trends, strings.Join(words[:3], " ")+"...")
			} else {
				trends = append(trends, video.Title)
			}
		}
	}
	return trends
}

func countItems(data *models.PlatformData) int {
	if data == nil {
		return 0
	}
	count := 0
	if data.Reddit != nil {
		count += len(data.Reddit.HotPosts) + len(data.Reddit.TrendingSubreddits)
	}
	if data.YouTube != nil {
		count += len(data.YouTube.TrendingVideos)
	}
	if data.Bluesky != nil {
		count += len(data.Bluesky.PopularPosts)
	}
	return count
}

func (s *Service) updateMetrics(id string, snapshot *models.TrendSnapshot, sourceCounts map[string]int, errorCount int, duration time.Duration) {
	s.collector.RunDuration.Observe(duration.Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalRuns++
	s.metrics.LastRun = snapshot.Timestamp
	s.metrics.LastRunDuration = duration.String()
	s.metrics.LastMood = snapshot.Sentiment.OverallMood
	s.metrics.SourceMetrics = sourceCounts
	s.metrics.ErrorCount = errorCount
	if id != "" {
		s.metrics.LastSnapshotID = id
	}
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
