package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pixelflowlabs/trendreel/internal/ai"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/sentiment"
	"github.com/pixelflowlabs/trendreel/internal/sources"
	"github.com/pixelflowlabs/trendreel/internal/storage"
)

func main() {
	fmt.Println("🔍 TrendReel - API Connectivity Test")
	fmt.Println("====================================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	keywords := cfg.DomainKeywords()
	if len(keywords) == 0 {
		keywords = []string{"technology"}
	}
	if len(os.Args) > 1 {
		keywords = config.SplitKeywords(strings.Join(os.Args[1:], ","))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Printf("\n📡 Testing trend sources with %v...\n", keywords)
	fmt.Println(strings.Repeat("-", 40))

	testSource(ctx, sources.NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUserAgent), keywords)
	testSource(ctx, sources.NewYouTubeSource(cfg.YouTubeAPIKey), keywords)
	testSource(ctx, sources.NewBlueskySource(cfg.BlueskyIdentifier, cfg.BlueskyPassword), keywords)

	fmt.Println("\n🧠 Testing analysis services...")
	fmt.Println(strings.Repeat("-", 40))

	testClassifier(ctx, sentiment.NewHuggingFaceClassifier(cfg.HuggingFaceToken, cfg.SentimentModel))
	testGemini(ctx, cfg)
	testMongo(ctx, cfg)

	fmt.Println("\n✅ API connectivity test completed!")
	fmt.Println("\n💡 Next steps:")
	fmt.Println("   • Configure missing API keys in .env file")
	fmt.Println("   • Run a single analysis with: go run ./cmd/trendjob --once")
	fmt.Println("   • Start the API with: go run ./cmd/server")
}

func testSource(ctx context.Context, source sources.Source, keywords []string) {
	fmt.Printf("🔸 Testing %s... ", source.GetName())

	if !source.IsEnabled() {
		fmt.Printf("⚠️  DISABLED (missing credentials)\n")
		return
	}

	data, err := source.Collect(ctx, keywords)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	count, sample := summarize(data)
	fmt.Printf("✅ SUCCESS (%d items found)\n", count)
	if sample != "" {
		fmt.Printf("   📝 Sample: \"%s\"\n", sample)
	}
}

func summarize(data *models.PlatformData) (int, string) {
	if data == nil {
		return 0, ""
	}
	count, sample := 0, ""
	if r := data.Reddit; r != nil {
		count += len(r.TrendingSubreddits) + len(r.HotPosts)
		if len(r.HotPosts) > 0 {
			sample = r.HotPosts[0].Title
		}
	}
	if y := data.YouTube; y != nil {
		count += len(y.TrendingVideos)
		if len(y.TrendingVideos) > 0 && sample == "" {
			sample = y.TrendingVideos[0].Title
		}
	}
	if b := data.Bluesky; b != nil {
		count += len(b.PopularPosts)
		if len(b.PopularPosts) > 0 && sample == "" {
			sample = b.PopularPosts[0].Text
		}
	}
	return count, sample
}

func testClassifier(ctx context.Context, classifier *sentiment.HuggingFaceClassifier) {
	fmt.Printf("🔸 Testing HuggingFace sentiment... ")
	if !classifier.IsEnabled() {
		fmt.Printf("⚠️  DISABLED (missing token)\n")
		return
	}
	c := classifier.Classify(ctx, "This new gadget is absolutely wonderful")
	fmt.Printf("✅ %s (%.2f)\n", c.Label, c.Score)
}

func testGemini(ctx context.Context, cfg *config.Config) {
	fmt.Printf("🔸 Testing Gemini... ")
	gen, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		fmt.Printf("⚠️  DISABLED (%v)\n", err)
		return
	}
	text, err := gen.Generate(ctx, cfg.GeminiModel, "Reply with the single word: ok")
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}
	fmt.Printf("✅ SUCCESS (%q)\n", strings.TrimSpace(text))
}

func testMongo(ctx context.Context, cfg *config.Config) {
	fmt.Printf("🔸 Testing MongoDB... ")
	store, err := storage.NewMongoTrendStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		fmt.Printf("❌ ERROR: %v\n", err)
		return
	}

	snapshot, err := store.Latest(ctx)
	if err != nil {
		fmt.Printf("⚠️  CONNECTED (%v)\n", err)
		return
	}
	fmt.Printf("✅ SUCCESS (latest snapshot %s from %s)\n", snapshot.ID, snapshot.Timestamp.Format(time.RFC3339))
}
