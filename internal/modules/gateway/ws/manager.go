// Package ws manages websocket sessions and fans game events out to them.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/frankieli/dice_arena/pkg/logger"
	"github.com/gorilla/websocket"
)

type CloseReason string

const (
	ReasonWriteError CloseReason = "write_error"
	ReasonPingError  CloseReason = "ping_error"
	ReasonReadError  CloseReason = "read_error"
	ReasonReplaced   CloseReason = "replaced_by_new_connection"
	ReasonShutdown   CloseReason = "server_shutdown"
	ReasonBufferFull CloseReason = "buffer_full"
)

// Config controls per-session keepalive and framing limits. Zero values
// fall back to the defaults below.
type Config struct {
	PingInterval   time.Duration
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

func (c Config) withDefaults() Config {
	if c.PingInterval <= 0 {
		c.PingInterval = 54 * time.Second
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	return c
}

// Session is one connected client. Outbound traffic goes through the
// buffered Send channel; a client that cannot drain it gets dropped rather
// than backpressuring the fanout.
type Session struct {
	UserID    int64
	Conn      *websocket.Conn
	Send      chan []byte
	manager   *Manager
	closeOnce sync.Once
}

// Manager tracks every connected session, one per user.
type Manager struct {
	cfg        Config
	sessions   map[int64]*Session
	register   chan *Session
	unregister chan *Session
	mu         sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:        cfg.withDefaults(),
		sessions:   make(map[int64]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
	}
}

// Register attaches a new connection. A second connection from the same
// user replaces the first.
func (m *Manager) Register(conn *websocket.Conn, userID int64) *Session {
	s := &Session{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		manager: m,
	}
	m.register <- s
	return s
}

// Run starts the manager loop
func (m *Manager) Run() {
	for {
		select {
		case s := <-m.register:
			m.mu.Lock()
			if old, ok := m.sessions[s.UserID]; ok {
				old.closeWith(ReasonReplaced, nil)
			}
			m.sessions[s.UserID] = s
			m.mu.Unlock()

		case s := <-m.unregister:
			m.mu.Lock()
			if current, ok := m.sessions[s.UserID]; ok && current == s {
				delete(m.sessions, s.UserID)
			}
			m.mu.Unlock()
		}
	}
}

// Broadcast sends a payload to every connected session. A full send buffer
// drops the session instead of blocking the broadcaster.
func (m *Manager) Broadcast(message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sessions {
		select {
		case s.Send <- message:
		default:
			s.closeWith(ReasonBufferFull, nil)
		}
	}
}

// Count returns the number of connected sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		s.closeWith(ReasonShutdown, nil)
	}
}

func (s *Session) closeWith(r CloseReason, err error) {
	s.closeOnce.Do(func() {
		logger.Info(context.Background()).
			Int64("user_id", s.UserID).
			Str("reason", string(r)).
			Err(err).
			Msg("ws session closed")
		s.Conn.Close()
	})
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings. Runs as one goroutine per session.
func (s *Session) WritePump() {
	cfg := s.manager.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.closeWith(ReasonWriteError, err)
				return
			}

		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.closeWith(ReasonPingError, err)
				return
			}
		}
	}
}

// ReadPump consumes the inbound side until the peer goes away. Clients only
// listen; anything they send is discarded after refreshing the deadline.
func (s *Session) ReadPump() {
	var readErr error
	defer func() {
		s.manager.unregister <- s
		s.closeWith(ReasonReadError, readErr)
	}()

	cfg := s.manager.cfg
	s.Conn.SetReadLimit(cfg.MaxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		return nil
	})

	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				readErr = err
			}
			return
		}
	}
}
