package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pixelflowlabs/trendreel/internal/ai"
	"github.com/pixelflowlabs/trendreel/internal/analysis"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/dashboard"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/notifications"
	"github.com/pixelflowlabs/trendreel/internal/sentiment"
	"github.com/pixelflowlabs/trendreel/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const outputDir = "test_output"

// FileTrendStore writes snapshots as JSON files for local testing
type FileTrendStore struct {
	dir  string
	last *models.TrendSnapshot
}

func (f *FileTrendStore) Save(ctx context.Context, snapshot *models.TrendSnapshot) (string, error) {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", err
	}
	id := uuid.NewString()
	snapshot.ID = id
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(f.dir, "snapshot_"+id+".json"), data, 0644); err != nil {
		return "", err
	}
	f.last = snapshot
	return id, nil
}

// Latest returns the last saved snapshot without its platform data
func (f *FileTrendStore) Latest(ctx context.Context) (*models.TrendSnapshot, error) {
	if f.last == nil {
		return nil, storage.ErrNoTrends
	}
	latest := *f.last
	latest.PlatformData = nil
	return &latest, nil
}

// TerminalNotifier prints digests instead of sending them
type TerminalNotifier struct{}

func (t *TerminalNotifier) IsEnabled() bool { return true }

func (t *TerminalNotifier) SendDigest(ctx context.Context, snapshot *models.TrendSnapshot) error {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Print(notifications.DigestText(snapshot))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("💾 Snapshot written to %s/\n", outputDir)
	return nil
}

func main() {
	var (
		sample bool
		domain string
	)
	cmd := &cobra.Command{
		Use:   "test-report",
		Short: "Run one trend analysis locally and print its digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), sample, domain)
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "print the digest for the built-in sample snapshot without collecting")
	cmd.Flags().StringVar(&domain, "domain", "", "comma-separated domain keywords")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, sample bool, domain string) error {
	fmt.Println("🧪 TrendReel - Digest Report Test")
	fmt.Println("=================================")

	notifier := &TerminalNotifier{}
	if sample {
		return notifier.SendDigest(ctx, dashboard.SampleSnapshot())
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logrus.SetLevel(logrus.WarnLevel)

	var generator ai.Generator
	if gemini, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey); err == nil {
		generator = gemini
	}

	service := analysis.NewService(cfg, &FileTrendStore{dir: outputDir}, notifier,
		sentiment.NewAnalyzer(sentiment.NewHuggingFaceClassifier(cfg.HuggingFaceToken, cfg.SentimentModel)),
		ai.NewAnalyst(generator, cfg.GeminiModel, cfg.GeminiPromptModel),
		nil)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	fmt.Println("🚀 Running trend analysis...")
	if _, err := service.Run(ctx, domain); err != nil {
		return fmt.Errorf("trend analysis failed: %w", err)
	}

	fmt.Println("\n📊 Run metrics:")
	fmt.Println(service.GetMetrics())
	return nil
}
