package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrIncomplete is returned before any request is sent when a field is empty
var ErrIncomplete = errors.New("Please fill out all fields")

// Result is a finished generation: either a URL to stream from or a local file
type Result struct {
	VideoURL    string
	Prompt      string
	FilePath    string
	Placeholder bool
}

// Client submits video requests to the generation API
type Client struct {
	baseURL   string
	outputDir string
	client    *resty.Client
}

type generateResponse struct {
	Success     bool   `json:"success"`
	VideoURL    string `json:"videoUrl"`
	Prompt      string `json:"prompt"`
	Placeholder bool   `json:"placeholder"`
}

// NewClient creates a client for the API at baseURL that writes downloaded
// videos into outputDir
func NewClient(baseURL, outputDir string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		outputDir: outputDir,
		client: resty.New().
			SetTimeout(10 * time.Minute),
	}
}

// Submit sends req and waits for the finished video
func (c *Client) Submit(ctx context.Context, req *models.VideoRequest) (*Result, error) {
	if req == nil || !req.Complete() {
		return nil, ErrIncomplete
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(c.baseURL + "/api/generate-video")
	if err != nil {
		return nil, fmt.Errorf("failed to generate video: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("failed to generate video: %s", errorMessage(body, resp.StatusCode()))
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header().Get("Content-Type"))
	switch mediaType {
	case "video/mp4":
		path, err := c.saveVideo(body, resp.Header().Get("Content-Disposition"))
		if err != nil {
			return nil, err
		}
		logrus.Infof("Saved generated video to %s", path)
		return &Result{FilePath: path}, nil
	case "application/json":
		var out generateResponse
		if err := json.NewDecoder(body).Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if out.VideoURL == "" {
			return nil, errors.New("failed to generate video: response carried no video URL")
		}
		return &Result{VideoURL: out.VideoURL, Prompt: out.Prompt, Placeholder: out.Placeholder}, nil
	default:
		return nil, fmt.Errorf("failed to generate video: unexpected content type %q", mediaType)
	}
}

func errorMessage(body io.Reader, status int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("server returned status %d", status)
}

func (c *Client) saveVideo(body io.Reader, disposition string) (string, error) {
	name := "generated_video.mp4"
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if fn := filepath.Base(params["filename"]); fn != "." && fn != "/" && fn != "" {
			name = fn
		}
	}

	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(c.outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
