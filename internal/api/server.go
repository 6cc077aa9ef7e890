package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pixelflowlabs/trendreel/internal/analysis"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/storage"
	"github.com/pixelflowlabs/trendreel/internal/video"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const maxRequestBody = 1 << 20

// VideoGenerator produces videos from product requests
type VideoGenerator interface {
	Generate(ctx context.Context, req *models.VideoRequest) (*models.VideoResult, error)
}

// Analyzer runs trend analyses and reports their metrics
type Analyzer interface {
	Run(ctx context.Context, domain string) (*models.TrendSnapshot, error)
	GetMetrics() string
	IsRunning() bool
}

// Server wires the HTTP routes to the services behind them
type Server struct {
	config    *config.Config
	trends    storage.TrendStore
	videos    VideoGenerator
	artifacts storage.StorageInterface
	analyzer  Analyzer
	registry  *prometheus.Registry
	limiter   *RateLimiter
	duration  *prometheus.HistogramVec
}

// NewServer creates the API server. analyzer may be nil when no analysis
// runs in this process; /trigger and /metrics/json then answer 503.
func NewServer(cfg *config.Config, trends storage.TrendStore, videos VideoGenerator, artifacts storage.StorageInterface,
	analyzer Analyzer, registry *prometheus.Registry) *Server {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendreel_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
	registry.MustRegister(duration)

	s := &Server{
		config:    cfg,
		trends:    trends,
		videos:    videos,
		artifacts: artifacts,
		analyzer:  analyzer,
		registry:  registry,
		duration:  duration,
	}
	if cfg.VideoRateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.VideoRateLimit)
	}
	return s
}

// Handler returns the full HTTP handler including CORS. With TrustProxy set,
// client addresses come from X-Forwarded-For and X-Real-IP.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogger(s.duration))

	router.HandleFunc("/api/trends", s.getTrends).Methods(http.MethodGet)

	var generate http.Handler = http.HandlerFunc(s.generateVideo)
	if s.limiter != nil {
		generate = s.limiter.Middleware(generate)
	}
	router.Handle("/api/generate-video", generate).Methods(http.MethodPost)
	router.HandleFunc("/api/videos/{name}", s.getVideo).Methods(http.MethodGet)

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/metrics/json", s.metricsHandler).Methods(http.MethodGet)
	router.HandleFunc("/trigger", s.triggerHandler).Methods(http.MethodPost)

	h := corsMiddleware(s.config.CORSOrigins)(router)
	if s.config.TrustProxy {
		h = handlers.ProxyHeaders(h)
	}
	return h
}

// StartLimiterCleanup periodically drops idle rate limiter entries until ctx ends
func (s *Server) StartLimiterCleanup(ctx context.Context) {
	if s.limiter == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(3 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.limiter.Cleanup(5 * time.Minute)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) getTrends(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.trends.Latest(r.Context())
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		writeError(w, http.StatusInternalServerError, "Database connection not available")
		return
	case errors.Is(err, storage.ErrNoTrends):
		writeError(w, http.StatusNotFound, "No trend data available")
		return
	case err != nil:
		logrus.Errorf("Error retrieving trend data: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve trend data: %v", err))
		return
	}

	logrus.Infof("Retrieved latest trend data from %s", snapshot.Timestamp.Format(time.RFC3339))
	writeJSON(w, http.StatusOK, snapshot)
}

type generateResponse struct {
	Success     bool   `json:"success"`
	VideoURL    string `json:"videoUrl"`
	Prompt      string `json:"prompt"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

func (s *Server) generateVideo(w http.ResponseWriter, r *http.Request) {
	var req models.VideoRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, video.ErrInvalidRequest.Error())
		return
	}

	result, err := s.videos.Generate(r.Context(), &req)
	if err != nil {
		status, message := videoErrorResponse(err)
		writeError(w, status, message)
		return
	}

	if result.FileName != "" {
		s.serveArtifact(w, r, result.FileName, result.DownloadName)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		VideoURL:    result.VideoURL,
		Prompt:      result.Prompt,
		Placeholder: result.Placeholder,
	})
}

func videoErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, video.ErrInvalidRequest):
		return http.StatusBadRequest, video.ErrInvalidRequest.Error()
	case errors.Is(err, video.ErrTrendsUnavailable):
		return http.StatusInternalServerError, video.ErrTrendsUnavailable.Error()
	case errors.Is(err, video.ErrPromptFailed):
		return http.StatusInternalServerError, video.ErrPromptFailed.Error()
	case errors.Is(err, video.ErrGenerationFailed):
		return http.StatusInternalServerError, video.ErrGenerationFailed.Error()
	default:
		logrus.Errorf("Error in video generation process: %v", err)
		return http.StatusInternalServerError, fmt.Sprintf("Video generation failed: %v", err)
	}
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.serveArtifact(w, r, name, name)
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, name, downloadName string) {
	if s.artifacts == nil {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	body, err := s.artifacts.Open(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}
	if err != nil {
		logrus.Errorf("Failed to open video %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, "Failed to read video")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		logrus.Warnf("Failed to stream video %s: %v", name, err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "Trend analysis is not running in this process")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.analyzer.GetMetrics()))
}

func (s *Server) triggerHandler(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "Trend analysis is not running in this process")
		return
	}

	if s.analyzer.IsRunning() {
		writeError(w, http.StatusConflict, "Trend analysis is already running")
		return
	}

	domain := r.URL.Query().Get("domain")
	go func() {
		_, err := s.analyzer.Run(context.Background(), domain)
		switch {
		case errors.Is(err, analysis.ErrRunInProgress):
			logrus.Warnf("Manual trend analysis trigger skipped: %v", err)
		case err != nil:
			logrus.Errorf("Manual trend analysis trigger failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Trend analysis triggered successfully"})
}
