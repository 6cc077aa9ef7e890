package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"

	maxClassifierInput = 512
)

// Classification is a single transformer verdict
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

var neutral = Classification{Label: LabelNeutral, Score: 0.5}

// Classifier labels a text as positive or negative
type Classifier interface {
	IsEnabled() bool
	Classify(ctx context.Context, text string) Classification
}

// HuggingFaceClassifier calls a hosted sequence-classification model
type HuggingFaceClassifier struct {
	token   string
	model   string
	baseURL string
	client  *resty.Client
}

// NewHuggingFaceClassifier creates a classifier for the given inference model
func NewHuggingFaceClassifier(token, model string) *HuggingFaceClassifier {
	return &HuggingFaceClassifier{
		token:   token,
		model:   model,
		baseURL: "https://api-inference.huggingface.co/models",
		client:  resty.New().SetTimeout(30 * time.Second),
	}
}

// WithBaseURL points the classifier at another inference endpoint
func (h *HuggingFaceClassifier) WithBaseURL(baseURL string) *HuggingFaceClassifier {
	h.baseURL = strings.TrimRight(baseURL, "/")
	return h
}

func (h *HuggingFaceClassifier) IsEnabled() bool {
	return h.token != "" && h.model != ""
}

// Classify returns the highest-scoring label. Any failure reads as neutral.
func (h *HuggingFaceClassifier) Classify(ctx context.Context, text string) Classification {
	if !h.IsEnabled() || text == "" {
		return neutral
	}

	if runes := []rune(text); len(runes) > maxClassifierInput {
		text = string(runes[:maxClassifierInput])
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetAuthToken(h.token).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"inputs": text}).
		Post(fmt.Sprintf("%s/%s", h.baseURL, h.model))

	if err != nil {
		logrus.Errorf("Transformer sentiment analysis error: %v", err)
		return neutral
	}

	if resp.StatusCode() != 200 {
		logrus.Errorf("Transformer sentiment API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
		return neutral
	}

	best, err := parseClassifications(resp.Body())
	if err != nil {
		logrus.Errorf("Failed to parse transformer response: %v", err)
		return neutral
	}

	return best
}

// parseClassifications accepts both the nested ([[...]]) and flat ([...])
// response shapes and returns the top label.
func parseClassifications(body []byte) (Classification, error) {
	var nested [][]Classification
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return top(nested[0])
	}

	var flat []Classification
	if err := json.Unmarshal(body, &flat); err != nil {
		return neutral, err
	}
	return top(flat)
}

func top(candidates []Classification) (Classification, error) {
	if len(candidates) == 0 {
		return neutral, fmt.Errorf("empty classification list")
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	best.Label = strings.ToUpper(best.Label)
	return best, nil
}
