package player

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/log"
)

// progressInterval is how often a PlaybackProgress event is emitted while a stream is playing
const progressInterval = time.Minute

// MPVPlayer implements the VideoPlayer interface for MPV
type MPVPlayer struct {
	path       string
	extraArgs  string
	userAgent  string
	socketPath string

	mu        sync.Mutex
	ipcClient *MPVIPCClient
	cmd       *exec.Cmd
}

// NewMPVPlayer creates a new MPV player instance
func NewMPVPlayer(cfg *config.Config) *MPVPlayer {
	path := cfg.Player.Path
	if path == "" {
		path = "mpv"
	}
	return &MPVPlayer{
		path:       path,
		extraArgs:  cfg.Player.Args,
		userAgent:  cfg.Provider.UserAgent,
		socketPath: GetMPVSocketPath(),
	}
}

// buildArgs returns the mpv command line for the given media.  The stream URL is always last.
func (p *MPVPlayer) buildArgs(media Media) []string {
	args := []string{
		"--no-terminal",                      // Disable terminal control
		"--keep-open=no",                     // Exit when the stream ends
		"--input-ipc-server=" + p.socketPath, // Set IPC socket path
	}
	if media.Title != "" {
		args = append(args, "--force-media-title="+media.Title)
	}
	if media.Referer != "" {
		args = append(args, "--referrer="+media.Referer)
	}
	if p.userAgent != "" {
		args = append(args, "--user-agent="+p.userAgent)
	}
	if p.extraArgs != "" {
		args = append(args, ParseArgs(p.extraArgs)...)
	}
	return append(args, media.URL)
}

// Play starts playback of the given stream, monitors for playback start, and returns a notification channel
func (p *MPVPlayer) Play(ctx context.Context, media Media) (<-chan PlaybackEvent, error) {
	log.Info("Starting MPV playback", "url", media.URL, "title", media.Title)

	// Only one mpv may own the socket path
	_ = p.Stop()

	// A previous run may have left its socket behind
	_ = os.Remove(p.socketPath)

	cmd := exec.Command(p.path, p.buildArgs(media)...)
	setupPlayerProcess(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start MPV: %w", err)
	}

	ipc := NewMPVIPCClient(p.socketPath)
	p.mu.Lock()
	p.cmd = cmd
	p.ipcClient = ipc
	p.mu.Unlock()

	if err := releasePlayerProcess(cmd); err != nil {
		log.Warn("Failed to release MPV process", "error", err)
	}

	events := make(chan PlaybackEvent, 10)
	go p.monitor(ctx, ipc, events)

	return events, nil
}

func (p *MPVPlayer) monitor(ctx context.Context, ipc *MPVIPCClient, events chan<- PlaybackEvent) {
	defer close(events)

	// Allow time for MPV to create the socket
	time.Sleep(300 * time.Millisecond)

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := ipc.WaitForConnection(connCtx, 20, 500*time.Millisecond); err != nil {
		log.Error("Failed to connect to MPV", "error", err)
		events <- PlaybackEvent{Type: PlaybackError, Error: err}
		return
	}

	// Live streams can take a while to buffer the first segment
	if err := ipc.WaitForPlaybackStart(ctx, 30*time.Second); err != nil {
		log.Error("Failed to detect MPV playback start", "error", err)
		events <- PlaybackEvent{Type: PlaybackError, Error: err}
		return
	}

	events <- PlaybackEvent{Type: PlaybackStarted}
	started := time.Now()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	mpvEventCh := ipc.Events()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Context cancelled, stopping MPV monitoring")
			return
		case <-ticker.C:
			watched := time.Since(started)
			log.Info("Playback progress", "watched", watched.Round(time.Second).String())
			events <- PlaybackEvent{Type: PlaybackProgress, Watched: watched}
		case event, ok := <-mpvEventCh:
			if !ok {
				log.Debug("MPV event channel closed")
				events <- PlaybackEvent{Type: PlaybackEnded, Watched: time.Since(started)}
				return
			}
			if event.Event == "end-file" {
				log.Info("MPV playback ended", "reason", endFileReason(event))
				events <- PlaybackEvent{Type: PlaybackEnded, Watched: time.Since(started)}
				return
			}
		}
	}
}

func endFileReason(event MPVEvent) string {
	if event.Reason != "" {
		return event.Reason
	}
	var reason string
	if err := json.Unmarshal(event.Data, &reason); err == nil {
		return reason
	}
	return "unknown"
}

// Stop stops playback if it's active
func (p *MPVPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ipcClient != nil {
		// The process is released on unix, so quitting over IPC is the reliable way to close it
		_ = p.ipcClient.SendCommand([]interface{}{"quit"})
		_ = p.ipcClient.Close()
		p.ipcClient = nil
	}

	if p.cmd != nil && p.cmd.Process != nil {
		log.Info("Stopping MPV playback")
		if err := p.cmd.Process.Kill(); err != nil {
			log.Debug("MPV process could not be killed", "error", err)
		}
	}
	p.cmd = nil

	return nil
}

// Cleanup performs any necessary cleanup
func (p *MPVPlayer) Cleanup() {
	_ = p.Stop()

	// Remove socket file if it exists (Unix only)
	if _, err := os.Stat(p.socketPath); err == nil {
		if err := os.Remove(p.socketPath); err != nil {
			log.Warn("Failed to remove MPV socket file", "path", p.socketPath, "error", err)
		}
	}
}
