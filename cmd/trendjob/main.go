package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pixelflowlabs/trendreel/internal/ai"
	"github.com/pixelflowlabs/trendreel/internal/analysis"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/notifications"
	"github.com/pixelflowlabs/trendreel/internal/scheduler"
	"github.com/pixelflowlabs/trendreel/internal/sentiment"
	"github.com/pixelflowlabs/trendreel/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	domain string
	once   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendjob",
		Short: "Collect social media trends and store analyzed snapshots",
		Long: `trendjob gathers trending content from Reddit, YouTube and Bluesky,
scores its sentiment, asks Gemini for commentary and stores the snapshot in
MongoDB. It runs immediately and then on ANALYSIS_SCHEDULE unless --once is set.`,
		SilenceUsage: true,
		RunE:         run,
	}
	rootCmd.Flags().StringVar(&domain, "domain", "", `comma-separated domain keywords (e.g. "technology,Blockchain")`)
	rootCmd.Flags().BoolVar(&once, "once", false, "run a single analysis and exit")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if domain != "" {
		cfg.Domain = domain
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewMongoTrendStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer store.Close(context.Background())
	if err := store.Ping(ctx); err != nil {
		return err
	}

	var generator ai.Generator
	if gemini, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey); err != nil {
		logrus.Warnf("Gemini AI unavailable: %v", err)
	} else {
		generator = gemini
	}

	service := analysis.NewService(cfg, store, notifications.NewService(cfg),
		sentiment.NewAnalyzer(sentiment.NewHuggingFaceClassifier(cfg.HuggingFaceToken, cfg.SentimentModel)),
		ai.NewAnalyst(generator, cfg.GeminiModel, cfg.GeminiPromptModel),
		nil)

	if once {
		start := time.Now()
		snapshot, err := service.Run(ctx, cfg.Domain)
		if err != nil {
			return fmt.Errorf("trend analysis failed: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"id":       snapshot.ID,
			"mood":     snapshot.Sentiment.OverallMood,
			"duration": time.Since(start).String(),
		}).Info("Trend analysis stored")
		return nil
	}

	cfg.RunOnStart = true
	sched := scheduler.NewService(cfg, service)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	logrus.Infof("Trend job scheduled with %q", cfg.AnalysisSchedule)

	<-ctx.Done()
	logrus.Info("Shutting down trend job...")
	sched.Stop()
	return nil
}
