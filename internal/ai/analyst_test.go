package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	args := m.Called(ctx, model, prompt)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2025, 3, 12, 19, 52, 33, 0, time.UTC)

func newTestAnalyst(gen Generator) *Analyst {
	a := NewAnalyst(gen, "analysis-model", "prompt-model")
	a.now = func() time.Time { return fixedNow }
	return a
}

func sampleSnapshot() *models.TrendSnapshot {
	return &models.TrendSnapshot{
		TopHashtags: map[string]int{"shorts": 7, "technology": 6},
		TopWords:    map[string]int{"blockchain": 27},
		TopTrends:   []string{"CryptoTechnology", "Bitcoin"},
		Sentiment:   models.Sentiment{OverallMood: "neutral"},
		PlatformData: &models.PlatformData{
			Reddit: &models.RedditData{HotPosts: []models.RedditPost{{Title: "Blockchain in cars"}}},
		},
	}
}

func TestAnalyst_Analyze_FencedJSON(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, "analysis-model", mock.MatchedBy(func(p string) bool {
		return assertContainsAll(p, "Top Hashtags: shorts, technology", `- Reddit: ["Blockchain in cars"]`, "- YouTube: None available", "in the technology domain")
	})).Return("Here you go:\n```json\n{\"summary\":\"Crypto rising\",\"key_insights\":[\"a\",\"b\"]}\n```", nil)

	analysis := newTestAnalyst(gen).Analyze(context.Background(), sampleSnapshot(), "technology")

	assert.Empty(t, analysis.Error)
	assert.Equal(t, "Crypto rising", analysis.Summary)
	assert.Equal(t, []string{"a", "b"}, analysis.KeyInsights)
	assert.Equal(t, fixedNow, analysis.Timestamp)
	gen.AssertExpectations(t)
}

func TestAnalyst_Analyze_PlainJSON(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(`{"trend_prediction":"up"}`, nil)

	analysis := newTestAnalyst(gen).Analyze(context.Background(), sampleSnapshot(), "")

	assert.Equal(t, "up", analysis.TrendPrediction)
}

func TestAnalyst_Analyze_LooseTypes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, a *models.AIAnalysis)
	}{
		{
			name:     "list where a string is expected",
			response: `{"trend_prediction":["up","down"],"summary":"ok"}`,
			check: func(t *testing.T, a *models.AIAnalysis) {
				assert.Equal(t, "up\ndown", a.TrendPrediction)
				assert.Equal(t, "ok", a.Summary)
			},
		},
		{
			name:     "object where a string is expected",
			response: `{"sentiment_analysis":{"overall":"positive","score":0.8}}`,
			check: func(t *testing.T, a *models.AIAnalysis) {
				assert.Equal(t, "overall: positive\nscore: 0.8", a.SentimentAnalysis)
			},
		},
		{
			name:     "echoed timestamp",
			response: `{"summary":"steady","timestamp":"2025-04-10T12:00:00"}`,
			check: func(t *testing.T, a *models.AIAnalysis) {
				assert.Equal(t, "steady", a.Summary)
				assert.Equal(t, fixedNow, a.Timestamp)
			},
		},
		{
			name:     "string where a list is expected",
			response: `{"key_insights":"shorts dominate","emerging_patterns":[{"pattern":"AI"},"",null]}`,
			check: func(t *testing.T, a *models.AIAnalysis) {
				assert.Equal(t, []string{"shorts dominate"}, a.KeyInsights)
				assert.Equal(t, []string{"pattern: AI"}, a.EmergingPatterns)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{}
			gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(tt.response, nil)

			analysis := newTestAnalyst(gen).Analyze(context.Background(), sampleSnapshot(), "")

			require.Empty(t, analysis.Error)
			assert.Empty(t, analysis.RawResponse)
			tt.check(t, analysis)
		})
	}
}

func TestAnalyst_Analyze_Unparseable(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("not json at all", nil)

	analysis := newTestAnalyst(gen).Analyze(context.Background(), sampleSnapshot(), "")

	assert.Equal(t, "Could not parse AI response as JSON", analysis.Error)
	assert.Equal(t, "not json at all", analysis.RawResponse)
	assert.Equal(t, fixedNow, analysis.Timestamp)
}

func TestAnalyst_Analyze_GeneratorError(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	analysis := newTestAnalyst(gen).Analyze(context.Background(), sampleSnapshot(), "")

	assert.Contains(t, analysis.Error, "quota exceeded")
}

func TestAnalyst_Analyze_NotConfigured(t *testing.T) {
	analysis := newTestAnalyst(nil).Analyze(context.Background(), sampleSnapshot(), "")

	assert.Equal(t, "Gemini AI not configured properly", analysis.Error)
	assert.Equal(t, fixedNow, analysis.Timestamp)
}

func TestAnalyst_VideoPrompt(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, "prompt-model", mock.MatchedBy(func(p string) bool {
		return assertContainsAll(p, "Product Name: EcoFresh Water Bottle", "CURRENT TRENDS TO INCORPORATE", `"shorts": 7`)
	})).Return("A long cinematic concept", nil).Once()
	gen.On("Generate", mock.Anything, "prompt-model", mock.MatchedBy(func(p string) bool {
		return assertContainsAll(p, "Simplify A long cinematic concept.")
	})).Return("  a bottle sweating on a mountain trail \n", nil).Once()

	req := &models.VideoRequest{ProductName: "EcoFresh Water Bottle", Description: "Insulated", Scenes: "Hiking"}

	prompt, err := newTestAnalyst(gen).VideoPrompt(context.Background(), req, sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "a bottle sweating on a mountain trail", prompt)
	gen.AssertExpectations(t)
}

func TestAnalyst_VideoPrompt_Errors(t *testing.T) {
	_, err := newTestAnalyst(nil).VideoPrompt(context.Background(), &models.VideoRequest{}, sampleSnapshot())
	assert.ErrorIs(t, err, ErrNotConfigured)

	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom"))

	_, err = newTestAnalyst(gen).VideoPrompt(context.Background(), &models.VideoRequest{}, sampleSnapshot())
	assert.ErrorContains(t, err, "failed to draft video prompt")
}

func assertContainsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
