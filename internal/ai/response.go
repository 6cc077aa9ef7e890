package ai

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

// analysisResponse mirrors the keys the analysis prompt asks for. Models do
// not always keep to the requested types, so every field decodes leniently.
// A timestamp echoed back by the model is ignored.
type analysisResponse struct {
	KeyInsights            flexList `json:"key_insights"`
	EmergingPatterns       flexList `json:"emerging_patterns"`
	SentimentAnalysis      flexText `json:"sentiment_analysis"`
	ContentRecommendations flexList `json:"content_recommendations"`
	TrendPrediction        flexText `json:"trend_prediction"`
	Summary                flexText `json:"summary"`
}

func (r *analysisResponse) toModel() *models.AIAnalysis {
	return &models.AIAnalysis{
		KeyInsights:            r.KeyInsights,
		EmergingPatterns:       r.EmergingPatterns,
		SentimentAnalysis:      string(r.SentimentAnalysis),
		ContentRecommendations: r.ContentRecommendations,
		TrendPrediction:        string(r.TrendPrediction),
		Summary:                string(r.Summary),
	}
}

// flexText accepts a string, a list (one line per element) or an object
// (one "key: value" line per field, sorted by key).
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = flexText(flatten(v))
	return nil
}

// flexList accepts a list of values or a single value
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}

	list := flexList{}
	for _, item := range items {
		if s := flatten(item); s != "" {
			list = append(list, s)
		}
	}
	if len(list) == 0 {
		list = nil
	}
	*l = list
	return nil
}

func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		lines := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := flatten(x[k]); s != "" {
				lines = append(lines, k+": "+s)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(x)
	}
}
