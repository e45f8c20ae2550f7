// Package session holds the two-state view model shared by the terminal and browser front ends.
package session

import (
	"errors"
	"sync"

	"github.com/PizzaHomicide/rotv/internal/domain"
)

// View identifies which screen a session is currently showing
type View int

const (
	ViewDirectory View = iota
	ViewPlayer
)

func (v View) String() string {
	switch v {
	case ViewDirectory:
		return "directory"
	case ViewPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// ErrEmptySelection is returned when selecting a channel that has no URL
var ErrEmptySelection = errors.New("channel has no URL")

// Session tracks the current view and selected channel.  It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	view     View
	selected domain.Channel
}

// New returns a session showing the directory with nothing selected
func New() *Session {
	return &Session{view: ViewDirectory}
}

func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Select records the channel and switches to the player view.  Selecting while already in the player view replaces
// the previous selection.
func (s *Session) Select(ch domain.Channel) error {
	if ch.URL == "" {
		return ErrEmptySelection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ch
	s.view = ViewPlayer
	return nil
}

// Back returns to the directory and clears the selection
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = domain.Channel{}
	s.view = ViewDirectory
}

// Selected returns the selected channel URL and name.  ok is false when nothing is selected.
func (s *Session) Selected() (url, name string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected.URL, s.selected.Name, s.selected.URL != ""
}

// Channel returns the full selected channel, the zero value when nothing is selected
func (s *Session) Channel() domain.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}
