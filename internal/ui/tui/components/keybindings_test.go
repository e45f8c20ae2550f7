package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestKeyBindingsBar(t *testing.T) {
	bindings := []KeyBinding{
		{Key: "enter", Desc: "Watch"},
		{Key: "r", Desc: "Refresh"},
		{Key: "/", Desc: "Search"},
	}

	t.Run("WideTerminalShowsAll", func(t *testing.T) {
		bar := KeyBindingsBar(120, bindings)
		assert.Contains(t, bar, "Watch")
		assert.Contains(t, bar, "Refresh")
		assert.Contains(t, bar, "Search")
	})

	t.Run("NarrowTerminalDropsTrailingHints", func(t *testing.T) {
		bar := KeyBindingsBar(24, bindings)
		assert.Contains(t, bar, "Watch")
		assert.NotContains(t, bar, "Search")
		assert.LessOrEqual(t, lipgloss.Width(bar), 24)
	})
}

func TestChannelCard(t *testing.T) {
	plain := ChannelCard("Digi 24", 15, false)
	selected := ChannelCard("Digi 24", 15, true)

	assert.Contains(t, plain, "Digi 24")
	assert.Contains(t, selected, "Digi 24")
	assert.Equal(t, CardWidth(15), lipgloss.Width(plain))
	assert.Equal(t, lipgloss.Width(plain), lipgloss.Width(selected))
}
