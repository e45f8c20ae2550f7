package models

import (
	"context"
	"fmt"
	"time"

	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/player"
	"github.com/PizzaHomicide/rotv/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/rotv/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/rotv/internal/ui/tui/styles"
	"github.com/PizzaHomicide/rotv/internal/ui/tui/util"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConnectingMessage is shown while a channel's stream is being resolved
const ConnectingMessage = "Connecting to signal..."

const resolveTimeout = 45 * time.Second

// PlayerModel shows the selected channel and its resolved stream
type PlayerModel struct {
	source        ChannelSource
	width, height int

	channel   domain.Channel
	resolving bool
	spinner   spinner.Model
	result    domain.StreamResult
	status    string // last playback event, shown under the stream
}

func NewPlayerModel(source ChannelSource) *PlayerModel {
	return &PlayerModel{
		source:  source,
		spinner: newSpinner(),
	}
}

func (m *PlayerModel) ViewType() View {
	return ViewPlayer
}

func (m *PlayerModel) Init() tea.Cmd {
	return nil
}

// Start shows ch and begins resolving its stream
func (m *PlayerModel) Start(ch domain.Channel) tea.Cmd {
	m.channel = ch
	m.result = domain.StreamResult{}
	m.status = ""
	m.resolving = true
	return tea.Batch(m.spinner.Tick, resolveStream(m.source, ch.URL))
}

// Reset clears the view after going back to the directory
func (m *PlayerModel) Reset() {
	m.channel = domain.Channel{}
	m.result = domain.StreamResult{}
	m.status = ""
	m.resolving = false
}

func resolveStream(source ChannelSource, channelURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()
		return StreamResolvedMsg{ChannelURL: channelURL, Result: source.Resolve(ctx, channelURL)}
	}
}

// SetResult stores a resolution outcome for the current channel
func (m *PlayerModel) SetResult(result domain.StreamResult) {
	m.resolving = false
	m.result = result
}

// SetStatus records the text for the playback status line
func (m *PlayerModel) SetStatus(status string) {
	m.status = status
}

// Result returns the last resolution outcome
func (m *PlayerModel) Result() domain.StreamResult {
	return m.result
}

// Resolving reports whether a resolution is in flight
func (m *PlayerModel) Resolving() bool {
	return m.resolving
}

// Status returns the playback status line
func (m *PlayerModel) Status() string {
	return m.status
}

func (m *PlayerModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	case spinner.TickMsg:
		if m.resolving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *PlayerModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextPlayer) {
	case kb.ActionBackToGrid:
		return func() tea.Msg { return BackToDirectoryMsg{} }
	case kb.ActionPlay:
		if !m.result.OK() {
			return Handled("play:no_stream")
		}
		ch, mediaURL := m.channel, m.result.MediaURL
		return func() tea.Msg { return PlayRequestedMsg{Channel: ch, MediaURL: mediaURL} }
	case kb.ActionRetryStream:
		if m.resolving || m.channel.URL == "" {
			return Handled("retry:busy")
		}
		log.Info("Retrying stream resolution", "url", m.channel.URL)
		return m.Start(m.channel)
	}
	return nil
}

func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

func (m *PlayerModel) View() string {
	header := styles.Header(m.width, m.channel.Name)

	var body string
	switch {
	case m.resolving:
		body = m.spinner.View() + " " + ConnectingMessage
	case m.result.OK():
		body = lipgloss.JoinVertical(lipgloss.Center,
			"Live stream ready",
			"",
			styles.Url.Render(util.TruncateString(m.result.MediaURL, max(m.width-8, 20))),
		)
	case m.result.Err != nil:
		body = styles.Error.Render(m.result.Message())
	}

	if m.status != "" {
		body = lipgloss.JoinVertical(lipgloss.Center, body, "", styles.Subtle.Render(m.status))
	}

	footer := components.KeyBindingsBar(m.width, []components.KeyBinding{
		{Key: "enter/p", Desc: "play"},
		{Key: "r", Desc: "retry"},
		{Key: "esc/b", Desc: "back to channels"},
	})

	content := styles.CenteredView(m.width, max(m.height-4, 3), body)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

// playbackStatus describes a player event for the status line
func playbackStatus(ev player.PlaybackEvent) string {
	switch ev.Type {
	case player.PlaybackStarted:
		return "Playing in external player"
	case player.PlaybackProgress:
		return fmt.Sprintf("Playing in external player (%s watched)", util.FormatWatched(ev.Watched))
	case player.PlaybackEnded:
		if ev.Watched > 0 {
			return fmt.Sprintf("Player closed after %s", util.FormatWatched(ev.Watched))
		}
		return "Player closed"
	case player.PlaybackError:
		if ev.Error != nil {
			return "Player error: " + ev.Error.Error()
		}
		return "Player error"
	default:
		return ""
	}
}
