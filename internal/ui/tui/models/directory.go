package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/rotv/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/rotv/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// EmptyDirectoryMessage is shown when the site returned no channels
const EmptyDirectoryMessage = "Could not load channels. Site might be down."

// directoryTimeout bounds a directory load, including any wait on the rate limiter
const directoryTimeout = 45 * time.Second

// ChannelSource is the part of the channel service the TUI depends on
type ChannelSource interface {
	Channels(ctx context.Context) []domain.Channel
	Refresh(ctx context.Context) []domain.Channel
	Resolve(ctx context.Context, channelURL string) domain.StreamResult
}

// DirectoryModel shows the channel grid
type DirectoryModel struct {
	source        ChannelSource
	width, height int
	columns       int
	labelWidth    int

	loading  bool
	loader   *LoadingModel
	channels []domain.Channel
	filtered []domain.Channel
	cursor   int
	rowOff   int // first visible row

	searchMode  bool
	searchInput textinput.Model
}

func NewDirectoryModel(cfg *config.Config, source ChannelSource) *DirectoryModel {
	input := textinput.New()
	input.Placeholder = "Filter channels..."
	input.Width = 30

	columns := cfg.UI.Columns
	if columns < 1 {
		columns = 1
	}
	labelWidth := cfg.UI.LabelWidth
	if labelWidth < 1 {
		labelWidth = 15
	}

	return &DirectoryModel{
		source:      source,
		columns:     columns,
		labelWidth:  labelWidth,
		loading:     true,
		loader:      NewLoadingModel("Loading channels...").WithTitle("TV Romania Direct"),
		searchInput: input,
	}
}

func (m *DirectoryModel) ViewType() View {
	return ViewDirectory
}

func (m *DirectoryModel) Init() tea.Cmd {
	return tea.Batch(m.loader.Init(), m.loadChannels(false))
}

// loadChannels fetches the directory off the UI goroutine
func (m *DirectoryModel) loadChannels(refresh bool) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), directoryTimeout)
		defer cancel()

		if refresh {
			return ChannelsLoadedMsg{Channels: source.Refresh(ctx)}
		}
		return ChannelsLoadedMsg{Channels: source.Channels(ctx)}
	}
}

func (m *DirectoryModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if cmd := m.handleSearchModeKeyMsg(msg); cmd != nil {
			return m, cmd
		}
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			return m, cmd
		}

	case spinner.TickMsg:
		if m.loading {
			_, cmd := m.loader.Update(msg)
			return m, cmd
		}

	case ChannelsLoadedMsg:
		log.Debug("Directory received channels", "count", len(msg.Channels))
		m.loading = false
		m.channels = msg.Channels
		m.applyFilter()
	}

	return m, nil
}

func (m *DirectoryModel) handleSearchModeKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if !m.searchMode {
		return nil
	}
	switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
	case kb.ActionBack:
		// Cancels search, clearing the filter
		m.searchMode = false
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.applyFilter()
		return Handled("search:exit")
	case kb.ActionSearchComplete:
		m.searchMode = false
		m.searchInput.Blur()
		m.applyFilter()
		return Handled("search:apply")
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	if cmd == nil {
		cmd = Handled("search:input")
	}
	return cmd
}

func (m *DirectoryModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextDirectory) {
	case kb.ActionMoveLeft:
		if m.cursor > 0 {
			m.cursor--
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:left")
	case kb.ActionMoveRight:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:right")
	case kb.ActionMoveUp:
		if m.cursor-m.columns >= 0 {
			m.cursor -= m.columns
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:up")
	case kb.ActionMoveDown:
		if m.cursor+m.columns < len(m.filtered) {
			m.cursor += m.columns
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:down")
	case kb.ActionPageUp:
		m.cursor = max(m.cursor-m.columns*m.visibleRows(), m.cursor%m.columns)
		m.ensureCursorVisible()
		return Handled("cursor_move:page_up")
	case kb.ActionPageDown:
		if len(m.filtered) > 0 {
			m.cursor = min(m.cursor+m.columns*m.visibleRows(), len(m.filtered)-1)
		}
		m.ensureCursorVisible()
		return Handled("cursor_move:page_down")
	case kb.ActionMoveTop:
		m.cursor = 0
		m.ensureCursorVisible()
		return Handled("cursor_move:top")
	case kb.ActionMoveBottom:
		m.cursor = max(len(m.filtered)-1, 0)
		m.ensureCursorVisible()
		return Handled("cursor_move:bottom")
	case kb.ActionEnableSearch:
		m.searchMode = true
		m.searchInput.Focus()
		return Handled("search:enable")
	case kb.ActionRefreshDirectory:
		log.Info("Refreshing channel directory on user request")
		m.loading = true
		return tea.Batch(m.loader.Restart("Refreshing channels..."), m.loadChannels(true))
	case kb.ActionSelectChannel:
		ch, ok := m.SelectedChannel()
		if !ok {
			return Handled("select:none")
		}
		return func() tea.Msg {
			return ChannelSelectedMsg{Channel: ch}
		}
	}
	return nil
}

// SelectedChannel returns the channel under the cursor
func (m *DirectoryModel) SelectedChannel() (domain.Channel, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return domain.Channel{}, false
	}
	return m.filtered[m.cursor], true
}

// Loading reports whether a directory load is in flight
func (m *DirectoryModel) Loading() bool {
	return m.loading
}

// Searching reports whether the search input has focus
func (m *DirectoryModel) Searching() bool {
	return m.searchMode
}

// applyFilter narrows the grid to channels whose name fuzzy matches the search input
func (m *DirectoryModel) applyFilter() {
	query := strings.TrimSpace(m.searchInput.Value())
	if query == "" {
		m.filtered = m.channels
	} else {
		filtered := make([]domain.Channel, 0, len(m.channels))
		for _, ch := range m.channels {
			if fuzzy.MatchFold(query, ch.Name) {
				filtered = append(filtered, ch)
			}
		}
		m.filtered = filtered
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
	m.ensureCursorVisible()
}

// visibleRows is the number of card rows that fit on screen.  Each card is three lines tall.
func (m *DirectoryModel) visibleRows() int {
	available := m.height - 8 // header, search bar, footer and margins
	return max(available/3, 1)
}

func (m *DirectoryModel) ensureCursorVisible() {
	row := m.cursor / m.columns
	rows := m.visibleRows()
	if row < m.rowOff {
		m.rowOff = row
	} else if row >= m.rowOff+rows {
		m.rowOff = row - rows + 1
	}
	if m.rowOff < 0 {
		m.rowOff = 0
	}
}

func (m *DirectoryModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.loader.Resize(width, height)
	m.ensureCursorVisible()
}

func (m *DirectoryModel) View() string {
	if m.loading {
		return m.loader.View()
	}

	header := styles.Header(m.width, "TV Romania Direct")
	subtitle := styles.CenteredText(m.width, styles.Subtle.Render("Pick a channel to watch."))

	var body string
	switch {
	case len(m.channels) == 0:
		body = styles.CenteredText(m.width, styles.Error.Render(EmptyDirectoryMessage))
	case len(m.filtered) == 0:
		body = styles.CenteredText(m.width, "No channels match the search")
	default:
		body = m.renderGrid()
	}

	var search string
	if m.searchMode || m.searchInput.Value() != "" {
		search = styles.SearchBar.Render("Search: " + m.searchInput.View())
	}

	footer := components.KeyBindingsBar(m.width, m.footerBindings())

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, search, body, "", footer)
}

func (m *DirectoryModel) renderGrid() string {
	start := m.rowOff * m.columns
	end := min(start+m.visibleRows()*m.columns, len(m.filtered))

	var rows []string
	for rowStart := start; rowStart < end; rowStart += m.columns {
		var cards []string
		for i := rowStart; i < min(rowStart+m.columns, end); i++ {
			cards = append(cards, components.ChannelCard(m.filtered[i].Name, m.labelWidth, i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if len(m.filtered) > end-start {
		grid += "\n" + styles.Subtle.Render(fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(m.filtered)))
	}
	return styles.CenteredText(m.width, grid)
}

func (m *DirectoryModel) footerBindings() []components.KeyBinding {
	if m.searchMode {
		return []components.KeyBinding{
			{Key: "enter", Desc: "apply"},
			{Key: "esc", Desc: "clear"},
		}
	}
	return []components.KeyBinding{
		{Key: "←↑↓→", Desc: "move"},
		{Key: "enter", Desc: "watch"},
		{Key: "/", Desc: "search"},
		{Key: "r", Desc: "refresh"},
		{Key: "ctrl+h", Desc: "help"},
	}
}
