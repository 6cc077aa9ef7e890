package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	Emerald      = lipgloss.Color("#10b981")
	EmeraldLight = lipgloss.Color("#34d399")
	Rose         = lipgloss.Color("#f43f5e")
	RoseLight    = lipgloss.Color("#fb7185")
	Purple       = lipgloss.Color("#a855f7")
	PurpleLight  = lipgloss.Color("#c084fc")

	Muted  = lipgloss.Color("#6b7280")
	Danger = lipgloss.Color("#ef4444")
)

// Theme is the colour scheme derived from the overall mood
type Theme struct {
	Mood      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
}

// ThemeForMood picks emerald for positive, rose for negative and purple otherwise
func ThemeForMood(mood string) Theme {
	switch mood {
	case "positive":
		return Theme{Mood: mood, Primary: Emerald, Secondary: EmeraldLight}
	case "negative":
		return Theme{Mood: mood, Primary: Rose, Secondary: RoseLight}
	default:
		return Theme{Mood: mood, Primary: Purple, Secondary: PurpleLight}
	}
}

func (t Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
}

func (t Theme) Heading() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)
}

func (t Theme) Bar() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Primary)
}

func (t Theme) Panel() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)
}

func (t Theme) Faint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Muted)
}

func (t Theme) Error() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(Danger)
}
