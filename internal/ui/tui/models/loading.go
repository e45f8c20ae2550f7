package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/PizzaHomicide/rotv/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingModel displays a spinner with a message while a request to the site is in flight
type LoadingModel struct {
	width, height int
	title         string
	message       string
	contextInfo   string
	spinner       spinner.Model
	startTime     time.Time
	now           func() time.Time
}

// NewLoadingModel creates a new loading model with the required message
func NewLoadingModel(message string) *LoadingModel {
	return &LoadingModel{
		message:   message,
		spinner:   newSpinner(),
		startTime: time.Now(),
		now:       time.Now,
	}
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	return s
}

// WithTitle adds an optional title to the loading box
func (m *LoadingModel) WithTitle(title string) *LoadingModel {
	m.title = title
	return m
}

// WithContextInfo adds a line of detail under the message
func (m *LoadingModel) WithContextInfo(info string) *LoadingModel {
	m.contextInfo = info
	return m
}

// Restart resets the elapsed timer, used when the same model is shown for a new request
func (m *LoadingModel) Restart(message string) tea.Cmd {
	m.message = message
	m.startTime = m.now()
	return m.spinner.Tick
}

func (m *LoadingModel) ViewType() View {
	return ViewLoading
}

func (m *LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *LoadingModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// Message returns the text shown next to the spinner
func (m *LoadingModel) Message() string {
	return m.message
}

func (m *LoadingModel) View() string {
	contentWidth := min(m.width-20, 70)
	if contentWidth < 30 {
		contentWidth = max(m.width-4, 30)
	}

	center := lipgloss.NewStyle().Width(contentWidth - 6).Align(lipgloss.Center)
	messageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)

	var b strings.Builder
	b.WriteString(center.Render(m.spinner.View() + " " + messageStyle.Render(m.message)))

	elapsed := m.now().Sub(m.startTime).Truncate(time.Second)
	if m.contextInfo != "" || elapsed >= 3*time.Second {
		info := m.contextInfo
		if elapsed >= 3*time.Second {
			info = strings.TrimSpace(fmt.Sprintf("%s (%s)", info, elapsed))
		}
		b.WriteString("\n\n")
		b.WriteString(center.Render(styles.Subtle.Italic(true).Render(info)))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#9D86FF")).
		Padding(1, 3).
		Width(contentWidth).
		Render(b.String())

	if m.title != "" {
		header := styles.Title.Width(contentWidth).Align(lipgloss.Center).Render(m.title)
		box = lipgloss.JoinVertical(lipgloss.Center, header, box)
	}

	if m.width == 0 || m.height == 0 {
		return box
	}
	return styles.CenteredView(m.width, m.height, box)
}

func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
