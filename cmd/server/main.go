package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pixelflowlabs/trendreel/internal/ai"
	"github.com/pixelflowlabs/trendreel/internal/analysis"
	"github.com/pixelflowlabs/trendreel/internal/api"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/notifications"
	"github.com/pixelflowlabs/trendreel/internal/scheduler"
	"github.com/pixelflowlabs/trendreel/internal/sentiment"
	"github.com/pixelflowlabs/trendreel/internal/storage"
	"github.com/pixelflowlabs/trendreel/internal/video"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateVideo(); err != nil {
		log.Fatalf("Invalid video configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting TrendReel server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Trend store. While MongoDB is unreachable the API answers
	// "Database connection not available"; the driver reconnects on its own.
	var trendStore storage.TrendStore
	mongoStore, err := storage.NewMongoTrendStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		logrus.Errorf("Failed to connect to MongoDB: %v", err)
		trendStore = storage.NewMongoTrendStoreFromCollection(nil)
	} else {
		if err := mongoStore.Ping(ctx); err != nil {
			logrus.Warnf("MongoDB not reachable yet, will retry on demand: %v", err)
		}
		trendStore = mongoStore
		defer mongoStore.Close(context.Background())
	}

	if cfg.RedisURL != "" {
		redisClient, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logrus.Warnf("Redis unavailable, serving trends without cache: %v", err)
		} else {
			defer redisClient.Close()
			trendStore = storage.NewCachedTrendStore(trendStore, redisClient, cfg.TrendsCacheTTL)
		}
	}

	artifacts, err := newArtifactStore(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize video storage: %v", err)
	}

	var generator ai.Generator
	if gemini, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey); err != nil {
		logrus.Warnf("Gemini AI unavailable: %v", err)
	} else {
		generator = gemini
	}
	analyst := ai.NewAnalyst(generator, cfg.GeminiModel, cfg.GeminiPromptModel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sentimentAnalyzer := sentiment.NewAnalyzer(sentiment.NewHuggingFaceClassifier(cfg.HuggingFaceToken, cfg.SentimentModel))
	notificationService := notifications.NewService(cfg)
	analysisService := analysis.NewService(cfg, trendStore, notificationService, sentimentAnalyzer, analyst,
		analysis.NewCollector(registry))

	schedulerService := scheduler.NewService(cfg, analysisService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	videoService := video.NewService(cfg, trendStore, artifacts, analyst)
	videoService.StartRetention(ctx, cfg.VideoRetention, min(time.Hour, cfg.VideoRetention))
	apiServer := api.NewServer(cfg, trendStore, videoService, artifacts, analysisService, registry)
	apiServer.StartLimiterCleanup(ctx)

	// Video generation can take minutes, so no write timeout
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     apiServer.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

// newArtifactStore keeps generated videos in Azure Blob Storage when an
// account is configured and on local disk otherwise
func newArtifactStore(ctx context.Context, cfg *config.Config) (storage.StorageInterface, error) {
	if cfg.StorageAccount != "" || cfg.StorageConnectionString != "" {
		return storage.NewAzureStorage(ctx, storage.AzureOptions{
			Account:          cfg.StorageAccount,
			Container:        cfg.StorageContainer,
			ConnectionString: cfg.StorageConnectionString,
		})
	}
	logrus.Infof("Storing generated videos in %s", cfg.VideoOutputDir)
	return storage.NewLocalStorage(cfg.VideoOutputDir)
}
