package studio

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pixelflowlabs/trendreel/internal/models"
)

// Submitter sends a video request and waits for the result
type Submitter interface {
	Submit(ctx context.Context, req *models.VideoRequest) (*Result, error)
}

// stepMsg carries the tick time
type stepMsg time.Time

type doneMsg struct {
	result *Result
	err    error
}

var (
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#c084fc"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a855f7"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10b981"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f43f5e"))
)

// ProgressModel shows a spinner and rotating processing messages while a
// request is in flight, then quits with the outcome.
type ProgressModel struct {
	ctx       context.Context
	submitter Submitter
	req       *models.VideoRequest

	spinner spinner.Model
	started time.Time
	step    string

	result *Result
	err    error
	done   bool
}

func NewProgressModel(ctx context.Context, submitter Submitter, req *models.VideoRequest) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return ProgressModel{
		ctx:       ctx,
		submitter: submitter,
		req:       req,
		spinner:   sp,
		started:   time.Now(),
		step:      StepAt(0),
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, nextStep(), m.submit())
}

func nextStep() tea.Cmd {
	return tea.Tick(StepInterval, func(t time.Time) tea.Msg { return stepMsg(t) })
}

func (m ProgressModel) submit() tea.Cmd {
	ctx, submitter, req := m.ctx, m.submitter, m.req
	return func() tea.Msg {
		result, err := submitter.Submit(ctx, req)
		return doneMsg{result: result, err: err}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case stepMsg:
		if m.done {
			return m, nil
		}
		m.step = StepAt(time.Time(msg).Sub(m.started))
		return m, nextStep()
	case doneMsg:
		m.result, m.err = msg.result, msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s %s\n", m.spinner.View(), stepStyle.Render(m.step))
	}
	if m.err != nil {
		return failStyle.Render("✗ "+m.err.Error()) + "\n"
	}
	return doneStyle.Render("✓ "+Describe(m.result)) + "\n"
}

// Outcome returns what the request produced once the model has quit
func (m ProgressModel) Outcome() (*Result, error) {
	return m.result, m.err
}

// Describe renders a finished result as one line
func Describe(r *Result) string {
	switch {
	case r == nil:
		return "No video produced"
	case r.FilePath != "":
		return "Video saved to " + r.FilePath
	case r.Placeholder:
		return "Sample video (placeholder mode): " + r.VideoURL
	default:
		return "Video ready: " + r.VideoURL
	}
}

// RunProgress submits req while showing progress on the terminal
func RunProgress(ctx context.Context, submitter Submitter, req *models.VideoRequest) (*Result, error) {
	if req == nil || !req.Complete() {
		return nil, ErrIncomplete
	}
	final, err := tea.NewProgram(NewProgressModel(ctx, submitter, req)).Run()
	if err != nil {
		return nil, fmt.Errorf("progress display failed: %w", err)
	}
	return final.(ProgressModel).Outcome()
}
