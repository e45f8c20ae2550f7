package models

import tea "github.com/charmbracelet/bubbletea"

// Model is implemented by every child model the AppModel coordinates
type Model interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
	Resize(width, height int)
	ViewType() View
}

// HandledMsg marks a key press as consumed so the caller stops looking for another handler
type HandledMsg struct {
	Reason string
}

// Handled returns a command that produces a HandledMsg.  Returning a non-nil command from a key handler is how a
// handler tells its caller that it acted on the key.
func Handled(reason string) tea.Cmd {
	return func() tea.Msg {
		return HandledMsg{Reason: reason}
	}
}
