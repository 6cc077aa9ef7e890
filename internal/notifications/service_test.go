package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *models.TrendSnapshot {
	return &models.TrendSnapshot{
		Timestamp:   time.Date(2025, 3, 12, 19, 52, 33, 0, time.UTC),
		Domain:      "crypto",
		TopHashtags: map[string]int{"crypto": 4, "bitcoin": 9},
		TopTrends:   []string{"Bitcoin", "CryptoTechnology"},
		Sentiment: models.Sentiment{
			OverallMood: "positive",
			Data: models.SentimentData{
				TextBlob:    models.LexiconScores{AvgPolarity: 0.31, AvgSubjectivity: 0.4},
				Transformer: models.TransformerScores{PositivePercentage: 62, AvgConfidence: 0.9},
			},
		},
		AIAnalysis: &models.AIAnalysis{Summary: "Crypto sentiment is climbing"},
	}
}

func TestService_IsEnabled(t *testing.T) {
	assert.False(t, NewService(&config.Config{}).IsEnabled())
	assert.True(t, NewService(&config.Config{TeamsWebhookURL: "http://x"}).IsEnabled())
	assert.True(t, NewService(&config.Config{NotificationEmail: "a@b.c"}).IsEnabled())
}

func TestService_SendDigest_Teams(t *testing.T) {
	var received TeamsMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	require.NoError(t, svc.SendDigest(context.Background(), testSnapshot()))

	assert.Equal(t, "MessageCard", received.Type)
	assert.Equal(t, "Trend Digest - crypto", received.Title)
	require.Len(t, received.Sections, 4)
	assert.Equal(t, "#bitcoin (9), #crypto (4)", received.Sections[1].ActivityText)
	assert.Equal(t, "Crypto sentiment is climbing", received.Sections[3].ActivityText)
}

func TestService_SendDigest_TeamsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewService(&config.Config{TeamsWebhookURL: server.URL})
	err := svc.SendDigest(context.Background(), testSnapshot())
	assert.ErrorContains(t, err, "Teams webhook returned status 400")
}

func TestService_SendDigest_Unconfigured(t *testing.T) {
	assert.NoError(t, NewService(&config.Config{}).SendDigest(context.Background(), testSnapshot()))
}

func TestBuildTeamsMessage_AIError(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.AIAnalysis = &models.AIAnalysis{Error: "Gemini AI not configured properly"}
	snapshot.TopHashtags = nil

	message := buildTeamsMessage(snapshot)

	require.Len(t, message.Sections, 3)
	assert.Equal(t, "AI analysis unavailable: Gemini AI not configured properly", message.Sections[2].ActivityText)
}

func TestBuildEmail(t *testing.T) {
	snapshot := testSnapshot()

	text := DigestText(snapshot)
	assert.Contains(t, text, "Overall mood: positive")
	assert.Contains(t, text, "#bitcoin (9)\n#crypto (4)")
	assert.Contains(t, text, "2. CryptoTechnology")

	html, err := buildEmailHTML(snapshot)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Trend Digest - crypto</h1>")
	assert.Contains(t, html, "<li>#bitcoin (9)</li>")
	assert.Contains(t, html, "March 12, 2025 at 7:52 PM UTC")
}
