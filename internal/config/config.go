package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port        string
	Debug       bool
	CORSOrigins string
	TrustProxy  bool // take client addresses from X-Forwarded-For

	// Trend store
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Snapshot cache
	RedisURL       string
	TrendsCacheTTL time.Duration

	// Gemini
	GeminiAPIKey      string
	GeminiModel       string // trend analysis
	GeminiPromptModel string // video prompt drafting

	// Video generation
	VideoAPIURL           string
	VideoPlaceholder      bool
	VideoPlaceholderDelay time.Duration
	VideoRateLimit        int // requests per minute per client
	VideoOutputDir        string
	VideoRetention        time.Duration // generated files older than this are swept

	// Azure Storage configuration for generated videos
	StorageAccount          string
	StorageContainer        string
	StorageConnectionString string

	// API Keys and credentials
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	YouTubeAPIKey      string
	BlueskyIdentifier  string
	BlueskyPassword    string

	// Transformer sentiment
	HuggingFaceToken string
	SentimentModel   string

	// Analysis job
	Domain           string
	AnalysisSchedule string
	RunOnStart       bool

	// Digest notifications
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Debug:       getBoolEnv("DEBUG", false),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		TrustProxy:  getBoolEnv("TRUST_PROXY", false),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "PixelFlowLabs"),
		MongoCollection: getEnv("MONGO_COLLECTION", "trends"),

		RedisURL:       getEnv("REDIS_URL", ""),
		TrendsCacheTTL: getDurationEnv("TRENDS_CACHE_TTL", 5*time.Minute),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiPromptModel: getEnv("GEMINI_PROMPT_MODEL", "gemini-1.5-flash"),

		VideoAPIURL:           getEnv("VIDEO_API_URL", ""),
		VideoPlaceholder:      getBoolEnv("VIDEO_PLACEHOLDER", false),
		VideoPlaceholderDelay: getDurationEnv("VIDEO_PLACEHOLDER_DELAY", 8*time.Second),
		VideoRateLimit:        getIntEnv("VIDEO_RATE_LIMIT", 6),
		VideoOutputDir:        getEnv("VIDEO_OUTPUT_DIR", os.TempDir()),
		VideoRetention:        getDurationEnv("VIDEO_RETENTION", 24*time.Hour),

		StorageAccount:          getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer:        getEnv("AZURE_STORAGE_CONTAINER", "videos"),
		StorageConnectionString: getEnv("AZURE_STORAGE_CONNECTION_STRING", ""),

		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "trend_analyzer_script"),
		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),
		BlueskyIdentifier:  getEnv("BLUESKY_EMAIL", ""),
		BlueskyPassword:    getEnv("BLUESKY_PASSWORD", ""),

		HuggingFaceToken: getEnv("HUGGINGFACE_TOKEN", ""),
		SentimentModel:   getEnv("SENTIMENT_MODEL", "distilbert-base-uncased-finetuned-sst-2-english"),

		Domain:           getEnv("DOMAIN", ""),
		AnalysisSchedule: getEnv("ANALYSIS_SCHEDULE", "0 */30 * * * *"),
		RunOnStart:       getBoolEnv("RUN_ON_START", true),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}

	if c.TrendsCacheTTL <= 0 {
		return fmt.Errorf("TRENDS_CACHE_TTL must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// ValidateVideo checks the settings only the video endpoint needs
func (c *Config) ValidateVideo() error {
	if c.VideoAPIURL == "" && !c.VideoPlaceholder {
		return fmt.Errorf("VIDEO_API_URL is required unless VIDEO_PLACEHOLDER is enabled")
	}
	return nil
}

// DomainKeywords returns the comma-separated Domain as trimmed keywords.
// An empty domain yields nil, which collectors treat as "no filtering".
func (c *Config) DomainKeywords() []string {
	return SplitKeywords(c.Domain)
}

// SplitKeywords splits a comma-separated domain string into keywords.
func SplitKeywords(domain string) []string {
	var keywords []string
	for _, kw := range strings.Split(domain, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
