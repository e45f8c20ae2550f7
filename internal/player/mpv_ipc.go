package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/PizzaHomicide/rotv/internal/log"
)

// idleRequestID tags the get_property reply used to check whether mpv is already playing
const idleRequestID = 1

// MPVIPCClient provides communication with a running MPV instance
type MPVIPCClient struct {
	socketPath string

	writeMu sync.Mutex
	conn    net.Conn
	events  chan MPVEvent
}

// MPVEvent is a single JSON line read from the MPV socket.  Command replies carry a request_id instead of an event
// name.
type MPVEvent struct {
	Event     string          `json:"event,omitempty"`
	Name      string          `json:"name,omitempty"`
	ID        int             `json:"id,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewMPVIPCClient creates a new MPV IPC client
func NewMPVIPCClient(socketPath string) *MPVIPCClient {
	return &MPVIPCClient{
		socketPath: socketPath,
		events:     make(chan MPVEvent, 100),
	}
}

// GetMPVSocketPath returns the socket path for MPV IPC communication
func GetMPVSocketPath() string {
	if path := os.Getenv("MPV_IPC_SOCKET"); path != "" {
		return path
	}

	switch runtime.GOOS {
	case "windows":
		// Windows uses named pipes instead of unix sockets
		return `\\.\pipe\rotv-mpv`
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("Failed to get user home directory", "error", err)
			return "/tmp/rotv-mpv-socket"
		}
		return filepath.Join(homeDir, ".config", "mpv", "rotv-socket")
	default:
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return filepath.Join(runtimeDir, "rotv-mpv-socket")
		}
		return "/tmp/rotv-mpv-socket"
	}
}

// WaitForConnection attempts to connect to MPV with retries
func (c *MPVIPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for MPV to create socket", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check if socket file exists for unix sockets
		if runtime.GOOS != "windows" {
			if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
				log.Debug("MPV socket does not exist yet", "attempt", attempt, "path", c.socketPath)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(retryDelay):
					continue
				}
			}
		}

		err := c.Connect(ctx)
		if err == nil {
			log.Info("Successfully connected to MPV", "attempt", attempt)
			return nil
		}

		log.Debug("Failed to connect to MPV", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("failed to connect to MPV after %d attempts", maxAttempts)
}

// Close closes the connection to MPV
func (c *MPVIPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// readEvents continuously reads events from MPV until the connection closes
func (c *MPVIPCClient) readEvents() {
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw MPV event", "data", string(line))

		var event MPVEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Error("Failed to unmarshal MPV event", "error", err)
			continue
		}

		c.events <- event
	}

	if err := scanner.Err(); err != nil {
		log.Debug("Error reading from MPV socket", "error", err)
	}

	log.Debug("MPV event reader stopped")
	close(c.events)
}

// Events returns the channel for MPV events
func (c *MPVIPCClient) Events() <-chan MPVEvent {
	return c.events
}

// SendCommand sends a command to MPV
func (c *MPVIPCClient) SendCommand(cmd []interface{}) error {
	return c.send(map[string]interface{}{"command": cmd})
}

func (c *MPVIPCClient) sendRequest(requestID int, cmd []interface{}) error {
	return c.send(map[string]interface{}{"command": cmd, "request_id": requestID})
}

func (c *MPVIPCClient) send(cmdObj map[string]interface{}) error {
	if c.conn == nil {
		return fmt.Errorf("not connected to MPV")
	}

	data, err := json.Marshal(cmdObj)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err = c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// ObserveProperty starts observing an MPV property
func (c *MPVIPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand([]interface{}{"observe_property", id, name})
}

// WaitForPlaybackStart waits for MPV to start playing the stream
func (c *MPVIPCClient) WaitForPlaybackStart(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.sendRequest(idleRequestID, []interface{}{"get_property", "idle-active"}); err != nil {
		return fmt.Errorf("failed to query playback state: %w", err)
	}

	if err := c.ObserveProperty(1, "playback-time"); err != nil {
		log.Warn("Failed to observe playback-time property", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for MPV to start playback")
		case event, ok := <-c.events:
			if !ok {
				return fmt.Errorf("MPV connection closed while waiting for playback")
			}

			if event.RequestID == idleRequestID && event.Event == "" {
				var idle bool
				if err := json.Unmarshal(event.Data, &idle); err == nil && !idle {
					log.Info("MPV is active (not idle)")
					return nil
				}
				continue
			}

			switch event.Event {
			case "property-change":
				if event.Name != "playback-time" {
					continue
				}
				var playbackTime float64
				if err := json.Unmarshal(event.Data, &playbackTime); err != nil {
					// null until the first frame
					continue
				}
				if playbackTime > 0 {
					log.Info("MPV playback has started", "time", playbackTime)
					return nil
				}
			case "playback-restart":
				log.Info("MPV playback has started (playback-restart event)")
				return nil
			case "file-loaded":
				log.Info("MPV file has been loaded")
				return nil
			case "end-file":
				return fmt.Errorf("MPV could not open the stream: %s", endFileReason(event))
			}
		}
	}
}
