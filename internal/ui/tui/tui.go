package tui

import (
	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/player"
	"github.com/PizzaHomicide/rotv/internal/ui/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

func Run(cfg *config.Config, source models.ChannelSource) error {
	app := models.NewAppModel(cfg, source, player.CreateVideoPlayer(cfg))
	p := tea.NewProgram(app, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(models.AppModel); ok {
		m.Cleanup()
	}
	return err
}
