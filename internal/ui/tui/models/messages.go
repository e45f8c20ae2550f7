package models

import (
	"github.com/PizzaHomicide/rotv/internal/domain"
	"github.com/PizzaHomicide/rotv/internal/player"
)

// ChannelsLoadedMsg carries the directory after a load or refresh.  An empty slice means the site could not be
// scraped.
type ChannelsLoadedMsg struct {
	Channels []domain.Channel
}

// ChannelSelectedMsg is sent by the directory when the user picks a channel
type ChannelSelectedMsg struct {
	Channel domain.Channel
}

// BackToDirectoryMsg is sent by the player view when the user wants to return to the grid
type BackToDirectoryMsg struct{}

// StreamResolvedMsg is the result of resolving the channel at ChannelURL.  Results whose ChannelURL no longer
// matches the selection are stale and dropped.
type StreamResolvedMsg struct {
	ChannelURL string
	Result     domain.StreamResult
}

// PlayRequestedMsg asks the app to hand the resolved stream to the video player
type PlayRequestedMsg struct {
	Channel  domain.Channel
	MediaURL string
}

// PlaybackMsg relays a single event from the video player.  Events is the channel to keep listening on; it is nil
// when the player could not be launched.
type PlaybackMsg struct {
	ChannelURL string
	Event      player.PlaybackEvent
	Events     <-chan player.PlaybackEvent
}
