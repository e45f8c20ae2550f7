package player

import (
	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/log"
)

// CreateVideoPlayer creates a new video player based on the configuration
func CreateVideoPlayer(cfg *config.Config) VideoPlayer {
	playerType := cfg.Player.Type
	log.Info("Creating video player", "type", playerType)

	switch playerType {
	case "mpv":
		return NewMPVPlayer(cfg)
	case "custom":
		return NewCustomPlayer(cfg.Player)
	default:
		log.Warn("Unknown player type, falling back to MPV", "type", playerType)
		return NewMPVPlayer(cfg)
	}
}
