package player

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/log"
)

// CustomPlayer runs an arbitrary binary with the configured arguments followed by the stream URL.  There is no IPC,
// so the only events are started, ended and error.
type CustomPlayer struct {
	path string
	args string

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewCustomPlayer(cfg config.PlayerConfig) *CustomPlayer {
	return &CustomPlayer{path: cfg.Path, args: cfg.Args}
}

func (p *CustomPlayer) Play(ctx context.Context, media Media) (<-chan PlaybackEvent, error) {
	if p.path == "" {
		return nil, fmt.Errorf("no player path configured for the custom player")
	}

	args := append(ParseArgs(p.args), media.URL)
	log.Info("Starting custom player", "path", p.path, "url", media.URL)

	cmd := exec.Command(p.path, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player %s: %w", p.path, err)
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	events := make(chan PlaybackEvent, 3)
	events <- PlaybackEvent{Type: PlaybackStarted}
	started := time.Now()

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	go func() {
		defer close(events)
		select {
		case <-ctx.Done():
			log.Debug("Context cancelled, no longer watching custom player")
		case err := <-exited:
			if err != nil {
				log.Warn("Custom player exited with error", "error", err)
				events <- PlaybackEvent{Type: PlaybackError, Error: err}
				return
			}
			log.Info("Custom player exited")
			events <- PlaybackEvent{Type: PlaybackEnded, Watched: time.Since(started)}
		}
	}()

	return events, nil
}

func (p *CustomPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		log.Info("Stopping custom player")
		return p.cmd.Process.Kill()
	}
	return nil
}

func (p *CustomPlayer) Cleanup() {
	_ = p.Stop()
}
