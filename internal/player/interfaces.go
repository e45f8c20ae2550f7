package player

import (
	"context"
	"time"
)

// PlaybackEventType represents the type of playback event
type PlaybackEventType string

const (
	// PlaybackStarted indicates that the player is showing the stream
	PlaybackStarted PlaybackEventType = "started"
	// PlaybackEnded indicates that the player was closed or the stream stopped
	PlaybackEnded PlaybackEventType = "ended"
	// PlaybackError indicates an error during playback
	PlaybackError PlaybackEventType = "error"
	// PlaybackProgress reports how long the stream has been watched
	PlaybackProgress PlaybackEventType = "progress"
)

// PlaybackEvent represents an event from the video player
type PlaybackEvent struct {
	Type    PlaybackEventType
	Watched time.Duration // Time spent watching, set on progress and ended events
	Error   error         // Error if Type is PlaybackError
}

// Media is what gets handed to the player
type Media struct {
	// URL of the stream manifest
	URL string
	// Title shown in the player window
	Title string
	// Referer is the channel page the stream was resolved from.  Some CDNs refuse manifests without it.
	Referer string
}

// VideoPlayer defines the interface for media player implementations
type VideoPlayer interface {
	// Play starts playback of the given media and returns a channel for playback events.  The channel is closed once
	// the player exits or ctx is cancelled.
	Play(ctx context.Context, media Media) (<-chan PlaybackEvent, error)

	// Stop stops the current playback
	Stop() error

	// Cleanup performs any necessary cleanup
	Cleanup()
}
