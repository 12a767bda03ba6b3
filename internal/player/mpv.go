package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	commandTimeout    = 5 * time.Second
	socketDialRetries = 50
	socketDialDelay   = 100 * time.Millisecond
)

var ErrConnClosed = errors.New("mpv connection is closed")

type mpvResponse struct {
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Event     string          `json:"event"`
}

type mpvCommand struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// MPV drives a running mpv process over its JSON-IPC socket.
type MPV struct {
	conn   net.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan mpvResponse
	nextID    int64

	closeOnce sync.Once
	closed    chan struct{}
}

// Launch starts an mpv process idling on socketPath. The caller owns the
// returned process and must reap it.
func Launch(ctx context.Context, binary, socketPath string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, binary,
		"--input-ipc-server="+socketPath,
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--no-terminal",
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	return cmd, nil
}

// Stop kills the mpv process and reaps it so it does not linger as a zombie.
func Stop(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	cmd.Process.Kill()
	cmd.Wait()
}

// Open connects to the JSON-IPC socket of an already-running mpv. mpv
// creates the socket asynchronously after startup, so dialing is retried.
func Open(socketPath string, logger *slog.Logger) (*MPV, error) {
	var conn net.Conn
	var err error
	for i := 0; i < socketDialRetries; i++ {
		conn, err = net.Dial("unix", socketPath)
		if err == nil {
			break
		}
		if _, statErr := os.Stat(socketPath); statErr == nil && i > 0 {
			// socket exists but refuses: mpv is gone
			return nil, fmt.Errorf("failed to dial mpv socket: %w", err)
		}
		time.Sleep(socketDialDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial mpv socket: %w", err)
	}

	m := &MPV{
		conn:    conn,
		logger:  logger,
		pending: make(map[int64]chan mpvResponse),
		closed:  make(chan struct{}),
	}
	go m.readLoop()

	return m, nil
}

func (m *MPV) readLoop() {
	scanner := bufio.NewScanner(m.conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		var resp mpvResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			m.logger.Debug("mpv: dropping unparsable line", "error", err)
			continue
		}

		if resp.Event != "" {
			m.logger.Debug("mpv: event", "event", resp.Event)
			continue
		}

		m.pendingMu.Lock()
		ch, ok := m.pending[resp.RequestID]
		if ok {
			delete(m.pending, resp.RequestID)
		}
		m.pendingMu.Unlock()

		if ok {
			ch <- resp
		}
	}

	m.Close()
}

func (m *MPV) command(args ...any) (json.RawMessage, error) {
	select {
	case <-m.closed:
		return nil, ErrConnClosed
	default:
	}

	ch := make(chan mpvResponse, 1)
	m.pendingMu.Lock()
	m.nextID++
	id := m.nextID
	m.pending[id] = ch
	m.pendingMu.Unlock()

	data, err := json.Marshal(&mpvCommand{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	m.writeMu.Lock()
	_, err = m.conn.Write(data)
	m.writeMu.Unlock()
	if err != nil {
		m.pendingMu.Lock()
		delete(m.pending, id)
		m.pendingMu.Unlock()
		return nil, fmt.Errorf("failed to write command: %w", err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", resp.Error)
		}
		return resp.Data, nil
	case <-m.closed:
		return nil, ErrConnClosed
	case <-time.After(commandTimeout):
		m.pendingMu.Lock()
		delete(m.pending, id)
		m.pendingMu.Unlock()
		return nil, fmt.Errorf("mpv command timed out")
	}
}

func (m *MPV) getFloat(property string) (float64, error) {
	data, err := m.command("get_property", property)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s: %w", property, err)
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return 0, fmt.Errorf("failed to unmarshal %s: %w", property, err)
	}

	return value, nil
}

func (m *MPV) setProperty(property string, value any) error {
	if _, err := m.command("set_property", property, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", property, err)
	}

	return nil
}

// LoadFile replaces the currently playing media with url.
func (m *MPV) LoadFile(url string) error {
	if _, err := m.command("loadfile", url, "replace"); err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	return nil
}

func (m *MPV) Position() (float64, error) {
	return m.getFloat("time-pos")
}

func (m *MPV) Duration() (float64, error) {
	return m.getFloat("duration")
}

func (m *MPV) IsPaused() (bool, error) {
	data, err := m.command("get_property", "pause")
	if err != nil {
		return false, fmt.Errorf("failed to get pause: %w", err)
	}

	var paused bool
	if err := json.Unmarshal(data, &paused); err != nil {
		return false, fmt.Errorf("failed to unmarshal pause: %w", err)
	}

	return paused, nil
}

func (m *MPV) Play() error {
	return m.setProperty("pause", false)
}

func (m *MPV) Pause() error {
	return m.setProperty("pause", true)
}

func (m *MPV) Seek(seconds float64) error {
	if _, err := m.command("seek", seconds, "absolute"); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
		m.conn.Close()
	})

	return nil
}
