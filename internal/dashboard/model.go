package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pixelflowlabs/trendreel/internal/models"
)

const fetchTimeout = 30 * time.Second

// Fetcher loads the snapshot the dashboard displays
type Fetcher interface {
	Fetch(ctx context.Context) FetchResult
}

// Layout selects how the dashboard panels are arranged
type Layout int

const (
	LayoutClassic Layout = iota
	LayoutCompact
)

func (l Layout) String() string {
	if l == LayoutCompact {
		return "compact"
	}
	return "classic"
}

type tickMsg time.Time

type fetchedMsg FetchResult

// Model is the trend dashboard program state
type Model struct {
	fetcher   Fetcher
	countdown *Countdown
	layout    Layout

	snapshot    *models.TrendSnapshot
	theme       Theme
	live        bool
	err         error
	loading     bool
	lastUpdated time.Time

	width  int
	height int
}

// NewModel creates a dashboard that starts with the sample snapshot until
// the first fetch returns.
func NewModel(fetcher Fetcher) Model {
	sample := SampleSnapshot()
	return Model{
		fetcher:   fetcher,
		countdown: NewCountdown(),
		layout:    LayoutClassic,
		snapshot:  sample,
		theme:     ThemeForMood(sample.Sentiment.OverallMood),
		loading:   true,
		width:     100,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetch() tea.Cmd {
	fetcher := m.fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return fetchedMsg(fetcher.Fetch(ctx))
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.layout = (m.layout + 1) % 2
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.countdown.Reset()
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.countdown.Tick() && !m.loading {
			m.loading = true
			return m, tea.Batch(m.fetch(), tick())
		}
		return m, tick()

	case fetchedMsg:
		m.loading = false
		m.snapshot = msg.Snapshot
		if m.snapshot == nil {
			m.snapshot = SampleSnapshot()
		}
		// a snapshot without a mood keeps the current colours
		if mood := m.snapshot.Sentiment.OverallMood; mood != "" {
			m.theme = ThemeForMood(mood)
		}
		m.live = msg.Live
		m.err = msg.Err
		m.lastUpdated = msg.FetchedAt
		m.countdown.Reset()
	}

	return m, nil
}

// Layout reports the active layout
func (m Model) Layout() Layout {
	return m.layout
}

func (m Model) View() string {
	theme := m.theme

	header := m.renderHeader(theme)
	var body string
	if m.layout == LayoutCompact {
		body = m.renderCompact(theme)
	} else {
		body = m.renderClassic(theme)
	}
	footer := theme.Faint().Render("tab: switch layout • r: refresh • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader(theme Theme) string {
	s := m.snapshot

	status := "live"
	if !m.live {
		status = "sample data"
	}
	if m.loading {
		status = "refreshing..."
	}

	updated := "never"
	if !m.lastUpdated.IsZero() {
		updated = m.lastUpdated.Format("15:04:05")
	}
	date := "N/A"
	if !s.Timestamp.IsZero() {
		date = s.Timestamp.Format("2006-01-02")
	}

	lines := []string{
		theme.Title().Render("TrendReel Dashboard") + "  " + theme.Faint().Render("["+m.layout.String()+"]"),
		fmt.Sprintf("Domain: %s   Date: %s   Mood: %s", orNA(s.Domain), date, orNA(s.Sentiment.OverallMood)),
		fmt.Sprintf("Last updated: %s   Next refresh in %s   (%s)", updated, m.countdown.Format(), status),
	}
	if m.err != nil {
		lines = append(lines, theme.Error().Render(m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderClassic(theme Theme) string {
	width := max(m.width-2, 40)
	panel := theme.Panel().Width(width - 4)

	return lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(theme.Heading().Render("Top Hashtags")+"\n"+renderBars(theme, HashtagBars(m.snapshot))),
		panel.Render(theme.Heading().Render("Top Words")+"\n"+renderBars(theme, WordBars(m.snapshot))),
		panel.Render(renderGauges(theme, m.snapshot)),
		panel.Render(renderTrends(theme, m.snapshot)),
		panel.Render(renderInsights(theme, m.snapshot, width-4)),
	)
}

func (m Model) renderCompact(theme Theme) string {
	half := max(m.width/2-2, 30)
	panel := theme.Panel().Width(half - 4)

	left := lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(renderGauges(theme, m.snapshot)),
		panel.Render(theme.Heading().Render("Top Hashtags")+"\n"+renderBars(theme, HashtagBars(m.snapshot))),
		panel.Render(renderTrends(theme, m.snapshot)),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(theme.Heading().Render("Top Words")+"\n"+renderBars(theme, WordBars(m.snapshot))),
		panel.Render(renderInsights(theme, m.snapshot, half-4)),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
