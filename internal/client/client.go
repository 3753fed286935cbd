// Package client is a websocket client for one game session. It reconnects
// on its own after a dropped connection, a bounded number of times, and joins
// the game again once reconnected.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gorilla/websocket"
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrClosed           = errors.New("session closed")
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	}
	return "disconnected"
}

type Config struct {
	URL                  string
	Header               http.Header
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}

// DefaultConfig returns the reconnect policy of the web client: ten attempts,
// thirty seconds apart.
func DefaultConfig(url string) Config {
	return Config{
		URL:                  url,
		MaxReconnectAttempts: 10,
		ReconnectDelay:       30 * time.Second,
		HandshakeTimeout:     10 * time.Second,
	}
}

// Session owns one connection at a time. Each Session is independent; there
// is no shared socket between sessions.
type Session struct {
	cfg    Config
	dialer websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	attempts int
	join     *ws.JoinPayload
	ended    bool // the read loop has exited and Messages is closed

	messages  chan ws.Message
	done      chan struct{}
	closeOnce sync.Once
}

func New(cfg Config) *Session {
	return &Session{
		cfg:      cfg,
		dialer:   websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		messages: make(chan ws.Message, 64),
		done:     make(chan struct{}),
	}
}

// Connect dials the server and starts reading. Incoming messages arrive on
// Messages until the session is closed or reconnecting gives up.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.state == StateClosed, s.ended:
		s.mu.Unlock()
		return ErrClosed
	case s.state == StateConnecting, s.state == StateConnected:
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.state = StateConnecting
	s.mu.Unlock()

	conn, err := s.dial(ctx)
	if err != nil {
		s.setState(StateDisconnected)
		return err
	}
	if !s.attach(conn) {
		return ErrClosed
	}
	go s.readLoop(ctx, conn)
	return nil
}

func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, s.cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}
	return conn, nil
}

// attach makes conn the live connection. It refuses, and closes conn, when
// the session was closed while dialing.
func (s *Session) attach(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		conn.Close()
		return false
	}
	s.conn = conn
	s.state = StateConnected
	s.attempts = 0
	log.Debugf("connected to %s", s.cfg.URL)
	return true
}

// Join asks to be seated in gameID. The request is repeated after every
// reconnect.
func (s *Session) Join(gameID, username string) error {
	join := ws.JoinPayload{GameID: gameID, Username: username}
	s.mu.Lock()
	s.join = &join
	s.mu.Unlock()
	return s.Send(ws.MessageTypeJoin, join)
}

func (s *Session) Send(t ws.MessageType, payload interface{}) error {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state == StateClosed:
		return ErrClosed
	case s.conn == nil || s.state != StateConnected:
		return ErrNotConnected
	}
	return s.conn.WriteJSON(msg)
}

func (s *Session) Messages() <-chan ws.Message {
	return s.messages
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReconnectAttempts is the number of failed attempts since the last
// successful connection.
func (s *Session) ReconnectAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		s.state = st
	}
}

// Close ends the session for good; no reconnect follows.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		conn := s.conn
		s.conn = nil
		s.mu.Unlock()

		close(s.done)
		if conn != nil {
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			err = conn.Close()
		}
	})
	return err
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		s.ended = true
		s.mu.Unlock()
		close(s.messages)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err == nil {
			var msg ws.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warnf("ignoring malformed message: %v", err)
				continue
			}
			select {
			case s.messages <- msg:
			case <-s.done:
				return
			}
			continue
		}

		conn.Close()
		if s.closed() {
			return
		}
		log.Warnf("connection to %s lost: %v", s.cfg.URL, err)

		next, ok := s.reconnect(ctx)
		if !ok {
			return
		}
		conn = next
	}
}

// reconnect keeps dialing until it succeeds or runs out of attempts.
func (s *Session) reconnect(ctx context.Context) (*websocket.Conn, bool) {
	s.setState(StateConnecting)
	for {
		s.mu.Lock()
		if s.attempts >= s.cfg.MaxReconnectAttempts {
			s.mu.Unlock()
			log.Errorf("giving up on %s after %d attempts", s.cfg.URL, s.cfg.MaxReconnectAttempts)
			s.setState(StateDisconnected)
			return nil, false
		}
		s.attempts++
		attempt := s.attempts
		s.mu.Unlock()

		select {
		case <-time.After(s.cfg.ReconnectDelay):
		case <-s.done:
			return nil, false
		case <-ctx.Done():
			s.setState(StateDisconnected)
			return nil, false
		}

		log.Infof("reconnecting to %s (attempt %d/%d)", s.cfg.URL, attempt, s.cfg.MaxReconnectAttempts)
		conn, err := s.dial(ctx)
		if err != nil {
			log.Warnf("reconnect attempt %d failed: %v", attempt, err)
			continue
		}
		if !s.attach(conn) {
			return nil, false
		}
		s.mu.Lock()
		join := s.join
		s.mu.Unlock()
		if join != nil {
			if err := s.Send(ws.MessageTypeJoin, *join); err != nil {
				log.Warnf("rejoin failed: %v", err)
			}
		}
		return conn, true
	}
}
