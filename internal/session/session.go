// Package session owns the websocket connection to a room channel: it sends
// local playback intents upstream and dispatches authoritative room updates
// to a handler.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cineroom/cineroom/internal/protocol"
	"github.com/cineroom/cineroom/pkg/volatile"
)

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	return [...]string{
		"Idle",
		"Connecting",
		"Connected",
		"Closed",
	}[s]
}

var (
	ErrNotConnected = errors.New("room session is not connected")
	ErrClosed       = errors.New("room session is closed")
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteWait        = 5 * time.Second
	defaultPingInterval     = 10 * time.Second
	defaultBackoffBase      = 500 * time.Millisecond
	defaultBackoffCap       = 30 * time.Second
)

type Config struct {
	// BaseURL is the relay websocket origin, e.g. "ws://localhost:8080".
	BaseURL string
	// Token is the room session token issued on join.
	Token string

	BackoffBase  time.Duration
	BackoffCap   time.Duration
	PingInterval time.Duration
}

func (cfg *Config) withDefaults() Config {
	out := *cfg
	if out.BackoffBase <= 0 {
		out.BackoffBase = defaultBackoffBase
	}
	if out.BackoffCap <= 0 {
		out.BackoffCap = defaultBackoffCap
	}
	if out.PingInterval <= 0 {
		out.PingInterval = defaultPingInterval
	}
	return out
}

// Session maintains at most one live connection per lifetime of the room
// view that owns it. Reconnecting fully replaces the prior connection.
type Session struct {
	cfg      Config
	onUpdate func(protocol.RoomUpdate)
	logger   *slog.Logger
	state    *volatile.Value[State]

	writeMu sync.Mutex

	mu         sync.Mutex
	conn       *websocket.Conn
	cancel     context.CancelFunc
	generation int
}

func New(cfg *Config, onUpdate func(protocol.RoomUpdate), logger *slog.Logger) *Session {
	c := cfg.withDefaults()
	return &Session{
		cfg:      c,
		onUpdate: onUpdate,
		logger:   logger,
		state:    volatile.NewValue(StateIdle),
	}
}

func (s *Session) State() State {
	return s.state.Load()
}

// Connect starts the connection loop for roomHash. Calling it again tears
// down any prior connection first; two loops never run at once.
func (s *Session) Connect(ctx context.Context, roomHash string) error {
	if s.state.Load() == StateClosed {
		return ErrClosed
	}

	target, err := s.roomURL(roomHash)
	if err != nil {
		return fmt.Errorf("failed to build room url: %w", err)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.generation++
	generation := s.generation

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(runCtx, target, generation)

	return nil
}

// Send transmits an outbound action if and only if the connection is open.
// Anything else drops the action: a stale intent replayed after reconnect is
// worse than a dropped one.
func (s *Session) Send(action any) error {
	switch s.state.Load() {
	case StateClosed:
		return ErrClosed
	case StateConnected:
	default:
		return ErrNotConnected
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(defaultWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write action: %w", err)
	}

	return nil
}

// Close tears the session down for good. No inbound message dispatched after
// Close reaches the handler.
func (s *Session) Close() {
	if s.state.Swap(StateClosed) == StateClosed {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *Session) roomURL(roomHash string) (string, error) {
	u, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("ws", "room", roomHash)
	u.Path += "/"

	q := u.Query()
	q.Set("token", s.cfg.Token)
	q.Set("version", fmt.Sprintf("%d", protocol.Version))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (s *Session) run(ctx context.Context, target string, generation int) {
	delay := s.cfg.BackoffBase

	for {
		if ctx.Err() != nil || s.state.Load() == StateClosed {
			return
		}
		s.storeUnlessClosed(StateConnecting)

		dialer := websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout}
		conn, resp, err := dialer.DialContext(ctx, target, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("failed to dial room, backing off", "error", err, "delay", delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(jitter(delay)):
			}
			delay = min(delay*2, s.cfg.BackoffCap)
			continue
		}

		if !s.adopt(conn, generation) {
			conn.Close()
			return
		}
		s.storeUnlessClosed(StateConnected)
		s.logger.Info("room connected")
		delay = s.cfg.BackoffBase

		pingCtx, cancelPing := context.WithCancel(ctx)
		go s.ping(pingCtx, conn)

		err = s.readLoop(conn)
		cancelPing()

		if ctx.Err() != nil || s.state.Load() == StateClosed {
			return
		}
		s.logger.Info("room connection lost, reconnecting", "error", err)
	}
}

// adopt installs conn as the session's connection unless a newer Connect or
// Close superseded this loop in the meantime.
func (s *Session) adopt(conn *websocket.Conn, generation int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation || s.state.Load() == StateClosed {
		return false
	}
	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn

	return true
}

// storeUnlessClosed transitions the state atomically so a run loop racing
// Close can never resurrect a closed session.
func (s *Session) storeUnlessClosed(state State) {
	for {
		old := s.state.Load()
		if old == StateClosed {
			return
		}
		if s.state.CompareAndSwap(old, state) {
			return
		}
	}
}

func (s *Session) readLoop(conn *websocket.Conn) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		s.dispatch(raw)
	}
}

func (s *Session) dispatch(raw []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		s.logger.Debug("dropping malformed message", "error", err)
		return
	}

	switch head.Type {
	case protocol.TypeRoomUpdate:
		var update protocol.RoomUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			s.logger.Debug("dropping malformed room update", "error", err)
			return
		}
		if s.state.Load() == StateClosed {
			return
		}
		s.onUpdate(update)
	default:
		s.logger.Debug("ignoring message", "type", head.Type)
	}
}

func (s *Session) ping(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(defaultWriteWait)); err != nil {
				s.logger.Debug("ping failed", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func jitter(d time.Duration) time.Duration {
	return d/2 + time.Duration(rand.Int64N(int64(d)))/2
}
