package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/storage"
	"github.com/pixelflowlabs/trendreel/internal/video"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTrendStore struct {
	mock.Mock
}

func (m *MockTrendStore) Save(ctx context.Context, snapshot *models.TrendSnapshot) (string, error) {
	args := m.Called(ctx, snapshot)
	return args.String(0), args.Error(1)
}

func (m *MockTrendStore) Latest(ctx context.Context) (*models.TrendSnapshot, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*models.TrendSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockVideoGenerator struct {
	mock.Mock
}

func (m *MockVideoGenerator) Generate(ctx context.Context, req *models.VideoRequest) (*models.VideoResult, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*models.VideoResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Run(ctx context.Context, domain string) (*models.TrendSnapshot, error) {
	args := m.Called(ctx, domain)
	return nil, args.Error(1)
}

func (m *MockAnalyzer) GetMetrics() string {
	return m.Called().String(0)
}

func (m *MockAnalyzer) IsRunning() bool {
	return m.Called().Bool(0)
}

type testDeps struct {
	trends    *MockTrendStore
	videos    *MockVideoGenerator
	analyzer  *MockAnalyzer
	artifacts *storage.LocalStorage
}

func newTestServer(t *testing.T, cfg *config.Config) (http.Handler, *testDeps) {
	t.Helper()

	artifacts, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	deps := &testDeps{
		trends:    &MockTrendStore{},
		videos:    &MockVideoGenerator{},
		analyzer:  &MockAnalyzer{},
		artifacts: artifacts,
	}
	server := NewServer(cfg, deps.trends, deps.videos, deps.artifacts, deps.analyzer, prometheus.NewRegistry())
	return server.Handler(), deps
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestGetTrends(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{})
	deps.trends.On("Latest", mock.Anything).Return(&models.TrendSnapshot{
		ID:        "65d1f0a2c3b4",
		Timestamp: time.Date(2025, 3, 12, 19, 52, 33, 0, time.UTC),
		TopTrends: []string{"Bitcoin"},
		Sentiment: models.Sentiment{OverallMood: "positive"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/trends", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "65d1f0a2c3b4", body["_id"])
	assert.Equal(t, "2025-03-12T19:52:33Z", body["timestamp"])
	assert.NotContains(t, body, "platform_data")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetTrends_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "unavailable", err: storage.ErrUnavailable, status: 500, message: "Database connection not available"},
		{name: "empty", err: storage.ErrNoTrends, status: 404, message: "No trend data available"},
		{name: "other", err: errors.New("socket closed"), status: 500, message: "Failed to retrieve trend data: socket closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, deps := newTestServer(t, &config.Config{})
			deps.trends.On("Latest", mock.Anything).Return(nil, tt.err)

			rec := do(h, http.MethodGet, "/api/trends", "")

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorOf(t, rec))
		})
	}
}

func TestGenerateVideo_URL(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{})
	deps.videos.On("Generate", mock.Anything, mock.MatchedBy(func(r *models.VideoRequest) bool {
		return r.ProductName == "EcoFresh" && r.FPS != nil && *r.FPS == 12
	})).Return(&models.VideoResult{VideoURL: "https://cdn.example.com/1.mp4", Prompt: "a bottle"}, nil)

	rec := do(h, http.MethodPost, "/api/generate-video", `{"productName":"EcoFresh","description":"d","scenes":"s","fps":12}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "https://cdn.example.com/1.mp4", body.VideoURL)
	assert.Equal(t, "a bottle", body.Prompt)
}

func TestGenerateVideo_Attachment(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{})
	require.NoError(t, deps.artifacts.Store(context.Background(), "generated_video_ab12cd34.mp4", strings.NewReader("mp4-data")))
	deps.videos.On("Generate", mock.Anything, mock.Anything).Return(&models.VideoResult{
		Prompt:       "a bottle on a trail",
		FileName:     "generated_video_ab12cd34.mp4",
		DownloadName: "a_bottle_on_a_trail.mp4",
	}, nil)

	rec := do(h, http.MethodPost, "/api/generate-video", `{"productName":"p","description":"d","scenes":"s"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=a_bottle_on_a_trail.mp4", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "mp4-data", rec.Body.String())
}

func TestGenerateVideo_AttachmentNameEscaped(t *testing.T) {
	tests := []struct {
		name         string
		downloadName string
		expected     string
	}{
		{name: "quotes", downloadName: `say "hi".mp4`, expected: `attachment; filename="say \"hi\".mp4"`},
		{name: "backslash", downloadName: `a\b.mp4`, expected: `attachment; filename="a\\b.mp4"`},
		{name: "non-ascii", downloadName: "café.mp4", expected: "attachment; filename*=utf-8''caf%C3%A9.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, deps := newTestServer(t, &config.Config{})
			require.NoError(t, deps.artifacts.Store(context.Background(), "generated_video_ab12cd34.mp4", strings.NewReader("x")))
			deps.videos.On("Generate", mock.Anything, mock.Anything).Return(&models.VideoResult{
				FileName:     "generated_video_ab12cd34.mp4",
				DownloadName: tt.downloadName,
			}, nil)

			rec := do(h, http.MethodPost, "/api/generate-video", `{}`)

			require.Equal(t, http.StatusOK, rec.Code)
			disposition := rec.Header().Get("Content-Disposition")
			assert.Equal(t, tt.expected, disposition)
			_, params, err := mime.ParseMediaType(disposition)
			require.NoError(t, err)
			assert.Equal(t, tt.downloadName, params["filename"])
		})
	}
}

func TestGenerateVideo_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "invalid", err: video.ErrInvalidRequest, status: 400, message: "Missing required fields"},
		{name: "no trends", err: video.ErrTrendsUnavailable, status: 500, message: "Could not retrieve trends data"},
		{name: "prompt", err: video.ErrPromptFailed, status: 500, message: "Failed to generate video prompt"},
		{name: "backend", err: video.ErrGenerationFailed, status: 500, message: "Failed to generate video"},
		{name: "unexpected", err: errors.New("boom"), status: 500, message: "Video generation failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, deps := newTestServer(t, &config.Config{})
			deps.videos.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(h, http.MethodPost, "/api/generate-video", `{"productName":"p"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorOf(t, rec))
		})
	}
}

func TestGenerateVideo_MalformedBody(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{})

	rec := do(h, http.MethodPost, "/api/generate-video", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", errorOf(t, rec))
	deps.videos.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateVideo_RateLimited(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{VideoRateLimit: 2})
	deps.videos.On("Generate", mock.Anything, mock.Anything).Return(&models.VideoResult{VideoURL: "u"}, nil)

	for i := 0; i < 2; i++ {
		rec := do(h, http.MethodPost, "/api/generate-video", `{}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(h, http.MethodPost, "/api/generate-video", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	// other routes are not limited
	deps.trends.On("Latest", mock.Anything).Return(nil, storage.ErrNoTrends)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/trends", "").Code)
}

func postFrom(h http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-video", strings.NewReader(`{}`))
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestGenerateVideo_RateLimitIgnoresForwardedFor(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{VideoRateLimit: 1})
	deps.videos.On("Generate", mock.Anything, mock.Anything).Return(&models.VideoResult{VideoURL: "u"}, nil)

	var codes []int
	for i := 0; i < 5; i++ {
		codes = append(codes, postFrom(h, "198.51.100.7:40000", fmt.Sprintf("203.0.113.%d", i+1)))
	}

	assert.Equal(t, []int{200, 429, 429, 429, 429}, codes)
}

func TestGenerateVideo_RateLimitTrustProxy(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{VideoRateLimit: 1, TrustProxy: true})
	deps.videos.On("Generate", mock.Anything, mock.Anything).Return(&models.VideoResult{VideoURL: "u"}, nil)

	// clients behind the proxy are told apart by their forwarded address
	assert.Equal(t, http.StatusOK, postFrom(h, "10.0.0.2:40000", "203.0.113.1"))
	assert.Equal(t, http.StatusOK, postFrom(h, "10.0.0.2:40000", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, postFrom(h, "10.0.0.2:40000", "203.0.113.1"))
}

func TestGetVideo(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{})
	require.NoError(t, deps.artifacts.Store(context.Background(), "clip.mp4", strings.NewReader("bytes")))

	rec := do(h, http.MethodGet, "/api/videos/clip.mp4", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bytes", rec.Body.String())

	rec = do(h, http.MethodGet, "/api/videos/missing.mp4", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Video not found", errorOf(t, rec))
}

func TestCORS(t *testing.T) {
	h, _ := newTestServer(t, &config.Config{CORSOrigins: "http://localhost:5173, https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-video", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Disposition", rec.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowAll(t *testing.T) {
	h, _ := newTestServer(t, &config.Config{CORSOrigins: "*"})

	req := httptest.NewRequest(http.MethodOptions, "/trigger", nil)
	req.Header.Set("Origin", "https://anywhere.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/trigger", nil)
	req.Header.Set("Origin", "https://anywhere.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTriggerAndMetrics(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{})

	deps.analyzer.On("IsRunning").Return(false)
	ran := make(chan string, 1)
	deps.analyzer.On("Run", mock.Anything, "gardening").
		Run(func(args mock.Arguments) { ran <- args.String(1) }).
		Return(nil, nil)
	deps.analyzer.On("GetMetrics").Return(`{"total_runs":1}`)

	rec := do(h, http.MethodPost, "/trigger?domain=gardening", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case domain := <-ran:
		assert.Equal(t, "gardening", domain)
	case <-time.After(2 * time.Second):
		t.Fatal("analysis was not triggered")
	}

	rec = do(h, http.MethodGet, "/metrics/json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_runs":1}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trendreel_api_request_duration_seconds")
}

func TestTrigger_AlreadyRunning(t *testing.T) {
	h, deps := newTestServer(t, &config.Config{})
	deps.analyzer.On("IsRunning").Return(true)

	rec := do(h, http.MethodPost, "/trigger", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Trend analysis is already running", errorOf(t, rec))
	deps.analyzer.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, &config.Config{})

	rec := do(h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
