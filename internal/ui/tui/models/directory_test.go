package models

import (
	"testing"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedDirectory(t *testing.T) *DirectoryModel {
	t.Helper()
	m := NewDirectoryModel(config.Default(), newTestSource())
	m.Resize(120, 40)
	_, _ = m.Update(ChannelsLoadedMsg{Channels: testChannels})
	return m
}

func cursorName(t *testing.T, m *DirectoryModel) string {
	t.Helper()
	ch, ok := m.SelectedChannel()
	require.True(t, ok)
	return ch.Name
}

func TestDirectoryGridNavigation(t *testing.T) {
	m := loadedDirectory(t)
	// 3 columns:  Digi 24, Antena 1, Pro TV / TVR 1, Antena 3 CNN

	assert.Equal(t, "Digi 24", cursorName(t, m))

	m.Update(runes("l"))
	assert.Equal(t, "Antena 1", cursorName(t, m))

	m.Update(key(tea.KeyDown))
	assert.Equal(t, "Antena 3 CNN", cursorName(t, m))

	// No card below, stays put
	m.Update(key(tea.KeyDown))
	assert.Equal(t, "Antena 3 CNN", cursorName(t, m))

	m.Update(key(tea.KeyLeft))
	assert.Equal(t, "TVR 1", cursorName(t, m))

	m.Update(runes("k"))
	assert.Equal(t, "Digi 24", cursorName(t, m))

	m.Update(key(tea.KeyEnd))
	assert.Equal(t, "Antena 3 CNN", cursorName(t, m))

	m.Update(key(tea.KeyHome))
	assert.Equal(t, "Digi 24", cursorName(t, m))
}

func TestDirectoryIgnoresKeysWhileLoading(t *testing.T) {
	m := NewDirectoryModel(config.Default(), newTestSource())

	_, cmd := m.Update(key(tea.KeyEnter))

	assert.Nil(t, cmd)
	assert.True(t, m.Loading())
	assert.Contains(t, m.View(), "Loading channels...")
}

func TestDirectorySearch(t *testing.T) {
	m := loadedDirectory(t)

	m.Update(runes("/"))
	require.True(t, m.Searching())
	for _, r := range "antena" {
		m.Update(runes(string(r)))
	}

	require.Len(t, m.filtered, 2)
	assert.Equal(t, "Antena 1", m.filtered[0].Name)
	assert.Equal(t, "Antena 3 CNN", m.filtered[1].Name)

	m.Update(key(tea.KeyEnter))
	assert.False(t, m.Searching())
	assert.Len(t, m.filtered, 2)

	// Selecting applies to the filtered grid
	_, cmd := m.Update(key(tea.KeyEnter))
	selected := findMsg[ChannelSelectedMsg](t, drain(cmd))
	assert.Equal(t, "Antena 1", selected.Channel.Name)

	// esc in search mode clears the filter
	m.Update(runes("/"))
	m.Update(key(tea.KeyEsc))
	assert.Len(t, m.filtered, len(testChannels))
}

func TestDirectoryRefresh(t *testing.T) {
	source := newTestSource()
	m := NewDirectoryModel(config.Default(), source)
	_, _ = m.Update(ChannelsLoadedMsg{Channels: testChannels})

	_, cmd := m.Update(runes("r"))
	assert.True(t, m.Loading())

	loaded := findMsg[ChannelsLoadedMsg](t, drain(cmd))
	assert.Equal(t, 1, source.refreshes)
	_, _ = m.Update(loaded)
	assert.False(t, m.Loading())
}

func TestDirectoryLabelsAreTruncated(t *testing.T) {
	m := NewDirectoryModel(config.Default(), newTestSource())
	m.Resize(120, 40)
	long := "Antena 3 CNN Romania HD"
	_, _ = m.Update(ChannelsLoadedMsg{Channels: []domain.Channel{{Name: long, URL: "https://rds.live/a3/"}}})

	view := m.View()
	assert.Contains(t, view, "Antena 3 CNN Ro")
	assert.NotContains(t, view, long)
}
