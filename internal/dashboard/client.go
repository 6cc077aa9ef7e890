package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/sirupsen/logrus"
)

// FetchResult is what one dashboard refresh produced.
// Live is false when Snapshot is the built-in sample.
type FetchResult struct {
	Snapshot  *models.TrendSnapshot
	Live      bool
	Err       error
	FetchedAt time.Time
}

// Client reads the latest trend snapshot from the trends API
type Client struct {
	baseURL string
	client  *resty.Client
}

// NewClient creates a dashboard client for the API at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// Fetch never fails: any problem falls back to SampleSnapshot.
// A non-2xx answer falls back silently; a transport or decode failure
// also records the error so the view can show it.
func (c *Client) Fetch(ctx context.Context) FetchResult {
	result := FetchResult{FetchedAt: time.Now()}

	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.baseURL + "/api/trends")
	if err != nil {
		logrus.Warnf("Failed to fetch trends, showing sample data: %v", err)
		result.Snapshot = SampleSnapshot()
		result.Err = fmt.Errorf("failed to fetch trends: %w", err)
		return result
	}

	if resp.IsError() {
		logrus.Debugf("Trends API returned status %d, showing sample data", resp.StatusCode())
		result.Snapshot = SampleSnapshot()
		return result
	}

	var snapshot models.TrendSnapshot
	if err := json.Unmarshal(resp.Body(), &snapshot); err != nil {
		logrus.Warnf("Failed to decode trends, showing sample data: %v", err)
		result.Snapshot = SampleSnapshot()
		result.Err = fmt.Errorf("failed to decode trends: %w", err)
		return result
	}

	result.Snapshot = &snapshot
	result.Live = true
	return result
}
