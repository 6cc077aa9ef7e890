package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pixelflowlabs/trendreel/internal/config"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const digestHashtags = 10

// Service sends trend digests via Teams and email
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

func (s *Service) IsEnabled() bool {
	return s.config.TeamsWebhookURL != "" || s.config.NotificationEmail != ""
}

// SendDigest sends a snapshot summary via configured notification channels
func (s *Service) SendDigest(ctx context.Context, snapshot *models.TrendSnapshot) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(ctx, snapshot); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent digest to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(snapshot); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent digest via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(ctx context.Context, snapshot *models.TrendSnapshot) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(buildTeamsMessage(snapshot)).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func digestTitle(snapshot *models.TrendSnapshot) string {
	if snapshot.Domain == "" {
		return "Trend Digest"
	}
	return fmt.Sprintf("Trend Digest - %s", snapshot.Domain)
}

func formatHashtags(snapshot *models.TrendSnapshot) []string {
	var tags []string
	for i, rc := range models.Ranked(snapshot.TopHashtags) {
		if i >= digestHashtags {
			break
		}
		tags = append(tags, fmt.Sprintf("#%s (%d)", rc.Key, rc.Count))
	}
	return tags
}

func summaryOf(snapshot *models.TrendSnapshot) string {
	if snapshot.AIAnalysis == nil {
		return ""
	}
	if snapshot.AIAnalysis.Error != "" {
		return "AI analysis unavailable: " + snapshot.AIAnalysis.Error
	}
	return snapshot.AIAnalysis.Summary
}

func buildTeamsMessage(snapshot *models.TrendSnapshot) *TeamsMessage {
	lexicon := snapshot.Sentiment.Data.TextBlob
	transformer := snapshot.Sentiment.Data.Transformer

	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   digestTitle(snapshot),
		Text:    fmt.Sprintf("Overall mood is **%s**", snapshot.Sentiment.OverallMood),
		Sections: []TeamsSection{{
			ActivityTitle: "Sentiment",
			Facts: []TeamsFact{
				{Name: "Polarity", Value: fmt.Sprintf("%.2f", lexicon.AvgPolarity)},
				{Name: "Subjectivity", Value: fmt.Sprintf("%.2f", lexicon.AvgSubjectivity)},
				{Name: "Positive", Value: fmt.Sprintf("%.0f%%", transformer.PositivePercentage)},
				{Name: "Generated", Value: snapshot.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")},
			},
			Markdown: true,
		}},
	}

	if tags := formatHashtags(snapshot); len(tags) > 0 {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Hashtags",
			ActivityText:  strings.Join(tags, ", "),
			Markdown:      true,
		})
	}

	if len(snapshot.TopTrends) > 0 {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Trends",
			ActivityText:  strings.Join(snapshot.TopTrends, "\n\n"),
			Markdown:      true,
		})
	}

	if summary := summaryOf(snapshot); summary != "" {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "AI Summary",
			ActivityText:  summary,
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(snapshot *models.TrendSnapshot) error {
	subject := fmt.Sprintf("%s (%s)", digestTitle(snapshot), snapshot.Sentiment.OverallMood)

	htmlBody, err := buildEmailHTML(snapshot)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", DigestText(snapshot))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const emailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #7c3aed; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .positive { color: #059669; }
        .negative { color: #e11d48; }
        .neutral { color: #7c3aed; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}}</h1>
        <p>Generated on {{.Snapshot.Timestamp.UTC.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <p><strong>Overall mood:</strong> <span class="{{.Snapshot.Sentiment.OverallMood}}">{{.Snapshot.Sentiment.OverallMood}}</span></p>
        {{if .Summary}}<p>{{.Summary}}</p>{{end}}
    </div>

    {{if .Hashtags}}
    <h2>Top Hashtags</h2>
    <ul>{{range .Hashtags}}<li>{{.}}</li>{{end}}</ul>
    {{end}}

    {{if .Snapshot.TopTrends}}
    <h2>Top Trends</h2>
    <ul>{{range .Snapshot.TopTrends}}<li>{{.}}</li>{{end}}</ul>
    {{end}}
</body>
</html>
`

func buildEmailHTML(snapshot *models.TrendSnapshot) (string, error) {
	t, err := template.New("email").Parse(emailTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		Title    string
		Summary  string
		Hashtags []string
		Snapshot *models.TrendSnapshot
	}{
		Title:    digestTitle(snapshot),
		Summary:  summaryOf(snapshot),
		Hashtags: formatHashtags(snapshot),
		Snapshot: snapshot,
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// DigestText renders the plain-text body of a digest
func DigestText(snapshot *models.TrendSnapshot) string {
	var text strings.Builder

	text.WriteString(digestTitle(snapshot) + "\n")
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", snapshot.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC")))
	text.WriteString(fmt.Sprintf("Overall mood: %s\n", snapshot.Sentiment.OverallMood))

	if summary := summaryOf(snapshot); summary != "" {
		text.WriteString(fmt.Sprintf("\n%s\n", summary))
	}

	if tags := formatHashtags(snapshot); len(tags) > 0 {
		text.WriteString("\nTOP HASHTAGS\n")
		text.WriteString("============\n")
		for _, tag := range tags {
			text.WriteString(tag + "\n")
		}
	}

	if len(snapshot.TopTrends) > 0 {
		text.WriteString("\nTOP TRENDS\n")
		text.WriteString("==========\n")
		for i, trend := range snapshot.TopTrends {
			text.WriteString(fmt.Sprintf("%d. %s\n", i+1, trend))
		}
	}

	return text.String()
}
