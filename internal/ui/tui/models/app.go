package models

import (
	"context"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/player"
	"github.com/PizzaHomicide/rotv/internal/session"
	kb "github.com/PizzaHomicide/rotv/internal/ui/tui/keybindings"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper and the
// only place that moves the session between the directory and the player.
type AppModel struct {
	config        *config.Config
	session       *session.Session
	activeModal   Modal
	width, height int

	directoryModel *DirectoryModel
	playerModel    *PlayerModel
	helpModel      *HelpModel

	videoPlayer player.VideoPlayer
}

// NewAppModel creates a new instance of the main application model
func NewAppModel(cfg *config.Config, source ChannelSource, videoPlayer player.VideoPlayer) AppModel {
	return AppModel{
		config:         cfg,
		session:        session.New(),
		activeModal:    ModalNone,
		directoryModel: NewDirectoryModel(cfg, source),
		playerModel:    NewPlayerModel(source),
		helpModel:      NewHelpModel(ViewDirectory),
		videoPlayer:    videoPlayer,
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising rotv TUI")
	return m.directoryModel.Init()
}

// activeView maps the session state onto the view shown
func (m AppModel) activeView() View {
	if m.session.View() == session.ViewPlayer {
		return ViewPlayer
	}
	return ViewDirectory
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionQuit:
			log.Info("Quit command received.  Shutting down...")
			return m, tea.Quit
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView())
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView())
				m.activeModal = ModalHelp
			}
			return m, nil
		case kb.ActionBack:
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		m.helpModel.Resize(msg.Width, msg.Height)
		m.directoryModel.Resize(msg.Width, msg.Height)
		m.playerModel.Resize(msg.Width, msg.Height)
		return m, nil

	case HandledMsg:
		log.Trace("Key handled", "reason", msg.Reason)
		return m, nil

	case ChannelsLoadedMsg:
		return m.updateDirectoryView(msg)

	case ChannelSelectedMsg:
		if err := m.session.Select(msg.Channel); err != nil {
			log.Warn("Ignoring channel selection", "name", msg.Channel.Name, "error", err)
			return m, nil
		}
		log.Info("Channel selected", "name", msg.Channel.Name, "url", msg.Channel.URL)
		return m, m.playerModel.Start(msg.Channel)

	case BackToDirectoryMsg:
		log.Debug("Returning to channel directory")
		m.session.Back()
		m.playerModel.Reset()
		return m, nil

	case StreamResolvedMsg:
		selectedURL, _, ok := m.session.Selected()
		if !ok || selectedURL != msg.ChannelURL {
			log.Debug("Dropping stale stream result", "url", msg.ChannelURL)
			return m, nil
		}
		m.playerModel.SetResult(msg.Result)
		if msg.Result.OK() && m.config.Player.Autoplay {
			ch := m.session.Channel()
			return m, m.play(PlayRequestedMsg{Channel: ch, MediaURL: msg.Result.MediaURL})
		}
		return m, nil

	case PlayRequestedMsg:
		return m, m.play(msg)

	case PlaybackMsg:
		log.Info("Playback event", "type", msg.Event.Type, "url", msg.ChannelURL)
		if selectedURL, _, ok := m.session.Selected(); ok && selectedURL == msg.ChannelURL {
			m.playerModel.SetStatus(playbackStatus(msg.Event))
		}
		if msg.Events != nil {
			return m, waitForPlaybackEvent(msg.ChannelURL, msg.Events)
		}
		return m, nil
	}

	if m.activeModal == ModalHelp {
		model, cmd := m.helpModel.Update(msg)
		m.helpModel = model.(*HelpModel)
		return m, cmd
	}

	switch m.activeView() {
	case ViewPlayer:
		return m.updatePlayerView(msg)
	default:
		return m.updateDirectoryView(msg)
	}
}

func (m AppModel) View() string {
	if m.activeModal == ModalHelp {
		return m.helpModel.View()
	}

	switch m.activeView() {
	case ViewPlayer:
		return m.playerModel.View()
	default:
		return m.directoryModel.View()
	}
}

// play launches the video player and starts relaying its events
func (m AppModel) play(req PlayRequestedMsg) tea.Cmd {
	if m.videoPlayer == nil {
		return Handled("play:no_player")
	}
	videoPlayer := m.videoPlayer
	return func() tea.Msg {
		log.Info("Launching player", "name", req.Channel.Name)
		events, err := videoPlayer.Play(context.Background(), player.Media{
			URL:     req.MediaURL,
			Title:   req.Channel.Name,
			Referer: req.Channel.URL,
		})
		if err != nil {
			log.Error("Failed to launch player", "error", err)
			return PlaybackMsg{
				ChannelURL: req.Channel.URL,
				Event:      player.PlaybackEvent{Type: player.PlaybackError, Error: err},
			}
		}
		return waitForPlaybackEvent(req.Channel.URL, events)()
	}
}

// waitForPlaybackEvent blocks for the next player event.  Returns nil once the player's channel closes.
func waitForPlaybackEvent(channelURL string, events <-chan player.PlaybackEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return PlaybackMsg{ChannelURL: channelURL, Event: ev, Events: events}
	}
}

func (m AppModel) updateDirectoryView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.directoryModel.Update(msg)
	m.directoryModel = model.(*DirectoryModel)
	return m, cmd
}

func (m AppModel) updatePlayerView(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.playerModel.Update(msg)
	m.playerModel = model.(*PlayerModel)
	return m, cmd
}

// Session exposes the view state, mainly for tests
func (m AppModel) Session() *session.Session {
	return m.session
}

// Cleanup releases the video player when the program exits
func (m AppModel) Cleanup() {
	if m.videoPlayer != nil {
		m.videoPlayer.Cleanup()
	}
}
