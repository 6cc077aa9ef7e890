package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/storage"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidRequest    = errors.New("Missing required fields")
	ErrTrendsUnavailable = errors.New("Could not retrieve trends data")
	ErrPromptFailed      = errors.New("Failed to generate video prompt")
	ErrGenerationFailed  = errors.New("Failed to generate video")

	errEmptyPrompt = errors.New("prompt generator returned an empty prompt")
)

// PlaceholderVideos are served in placeholder mode instead of calling the backend
var PlaceholderVideos = []string{
	"https://sample-videos.com/video123/mp4/720/big_buck_bunny_720p_1mb.mp4",
	"https://sample-videos.com/video123/mp4/720/big_buck_bunny_720p_2mb.mp4",
	"https://assets.mixkit.co/videos/preview/mixkit-animation-of-futuristic-devices-99786-large.mp4",
}

const (
	defaultNegativePrompt    = "low quality, blurry, artifacts"
	defaultInferenceSteps    = 50
	defaultGuidanceScale     = 7.5
	defaultHeight            = 256
	defaultWidth             = 256
	defaultNumFrames         = 24
	defaultFPS               = 8
	maxDownloadNameLength    = 30
	defaultDownloadName      = "generated_video"
	generationRequestTimeout = 10 * time.Minute

	// ArtifactPrefix names every video stored by the service
	ArtifactPrefix = "generated_video_"
)

// Prompter drafts a video prompt from a product and the current trends
type Prompter interface {
	VideoPrompt(ctx context.Context, req *models.VideoRequest, snapshot *models.TrendSnapshot) (string, error)
}

// Service turns product descriptions into generated videos
type Service struct {
	store            storage.TrendStore
	artifacts        storage.StorageInterface
	prompter         Prompter
	client           *resty.Client
	apiURL           string
	placeholder      bool
	placeholderDelay time.Duration
	pick             func(n int) int
	now              func() time.Time
}

// GenerationPayload is the JSON body sent to the video backend
type GenerationPayload struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Height            int     `json:"height"`
	Width             int     `json:"width"`
	NumFrames         int     `json:"num_frames"`
	FPS               int     `json:"fps"`
}

type generationResponse struct {
	VideoURL string `json:"videoUrl"`
}

// NewService creates a video service. artifacts receives mp4 bodies returned by the backend.
func NewService(cfg *config.Config, store storage.TrendStore, artifacts storage.StorageInterface, prompter Prompter) *Service {
	return &Service{
		store:            store,
		artifacts:        artifacts,
		prompter:         prompter,
		client:           resty.New().SetTimeout(generationRequestTimeout),
		apiURL:           cfg.VideoAPIURL,
		placeholder:      cfg.VideoPlaceholder,
		placeholderDelay: cfg.VideoPlaceholderDelay,
		pick:             rand.IntN,
		now:              time.Now,
	}
}

// Generate validates the request, drafts a prompt from the latest trends and
// asks the backend for a video.
func (s *Service) Generate(ctx context.Context, req *models.VideoRequest) (*models.VideoResult, error) {
	if req == nil || !req.Complete() {
		return nil, ErrInvalidRequest
	}

	snapshot, err := s.store.Latest(ctx)
	if err != nil {
		logrus.Errorf("Could not retrieve trends for video prompt: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrTrendsUnavailable, err)
	}

	prompt, err := s.prompter.VideoPrompt(ctx, req, snapshot)
	if err == nil && prompt == "" {
		err = errEmptyPrompt
	}
	if err != nil {
		logrus.Errorf("Error generating video prompt: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrPromptFailed, err)
	}
	logrus.Infof("Simplified video prompt: %s", prompt)

	if s.placeholder {
		return s.placeholderResult(ctx, prompt)
	}

	result, err := s.callBackend(ctx, prompt, PayloadFor(prompt, req))
	if err != nil {
		logrus.Errorf("Error calling video generation API: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	logrus.Infof("Video generated successfully for %s", req.ProductName)
	return result, nil
}

func (s *Service) placeholderResult(ctx context.Context, prompt string) (*models.VideoResult, error) {
	select {
	case <-time.After(s.placeholderDelay):
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
	}

	return &models.VideoResult{
		VideoURL:    PlaceholderVideos[s.pick(len(PlaceholderVideos))],
		Prompt:      prompt,
		Placeholder: true,
	}, nil
}

func (s *Service) callBackend(ctx context.Context, prompt string, payload GenerationPayload) (*models.VideoResult, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetDoNotParseResponse(true).
		Post(s.apiURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("video API returned status %d", resp.StatusCode())
	}

	contentType := resp.Header().Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/json"):
		var decoded generationResponse
		if err := json.NewDecoder(body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode video API response: %w", err)
		}
		return &models.VideoResult{VideoURL: decoded.VideoURL, Prompt: prompt}, nil

	case strings.Contains(contentType, "video/mp4"):
		name := fmt.Sprintf("%s%s.mp4", ArtifactPrefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		if err := s.artifacts.Store(ctx, name, body); err != nil {
			return nil, fmt.Errorf("failed to save video: %w", err)
		}
		return &models.VideoResult{
			Prompt:       prompt,
			FileName:     name,
			DownloadName: DownloadName(prompt),
		}, nil

	default:
		return nil, fmt.Errorf("unexpected content type: %q", contentType)
	}
}

// PruneArtifacts deletes generated videos older than maxAge and returns how
// many were removed. A failed delete is logged and skipped.
func (s *Service) PruneArtifacts(ctx context.Context, maxAge time.Duration) (int, error) {
	artifacts, err := s.artifacts.List(ctx, ArtifactPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list generated videos: %w", err)
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, a := range artifacts {
		if !a.Modified.Before(cutoff) {
			continue
		}
		if err := s.artifacts.Delete(ctx, a.Name); err != nil {
			logrus.Warnf("Failed to delete expired video %s: %v", a.Name, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logrus.Infof("Deleted %d generated videos older than %v", removed, maxAge)
	}
	return removed, nil
}

// StartRetention prunes expired videos now and then every interval until ctx
// ends. A non-positive maxAge disables it.
func (s *Service) StartRetention(ctx context.Context, maxAge, interval time.Duration) {
	if maxAge <= 0 || interval <= 0 {
		return
	}

	prune := func() {
		if _, err := s.PruneArtifacts(ctx, maxAge); err != nil {
			logrus.Warnf("Video retention sweep failed: %v", err)
		}
	}

	go func() {
		prune()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				prune()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// PayloadFor fills the backend payload, taking optional parameters from req
func PayloadFor(prompt string, req *models.VideoRequest) GenerationPayload {
	payload := GenerationPayload{
		Prompt:            prompt,
		NegativePrompt:    defaultNegativePrompt,
		NumInferenceSteps: defaultInferenceSteps,
		GuidanceScale:     defaultGuidanceScale,
		Height:            defaultHeight,
		Width:             defaultWidth,
		NumFrames:         defaultNumFrames,
		FPS:               defaultFPS,
	}

	if req.NegativePrompt != nil {
		payload.NegativePrompt = *req.NegativePrompt
	}
	if req.NumInferenceSteps != nil {
		payload.NumInferenceSteps = *req.NumInferenceSteps
	}
	if req.GuidanceScale != nil {
		payload.GuidanceScale = *req.GuidanceScale
	}
	if req.Height != nil {
		payload.Height = *req.Height
	}
	if req.Width != nil {
		payload.Width = *req.Width
	}
	if req.NumFrames != nil {
		payload.NumFrames = *req.NumFrames
	}
	if req.FPS != nil {
		payload.FPS = *req.FPS
	}

	return payload
}

// DownloadName derives an attachment name from the first prompt line
func DownloadName(prompt string) string {
	line, _, _ := strings.Cut(prompt, "\n")
	if line == "" {
		return defaultDownloadName + ".mp4"
	}

	runes := []rune(strings.ReplaceAll(line, " ", "_"))
	if len(runes) > maxDownloadNameLength {
		runes = runes[:maxDownloadNameLength]
	}
	return string(runes) + ".mp4"
}
