// Package transport carries Zenith frames over a websocket.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"zenith-sync/internal/domain"
	"zenith-sync/internal/zenith"
)

var (
	// ErrNotConnected is returned by Send while the socket is down.
	ErrNotConnected = errors.New("transport: not connected")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("transport: closed")
)

// State is the connection state reported on States.
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "Connected"
	}
	return "Disconnected"
}

// Config configures WebSocket transport behavior.
type Config struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// HandshakeTimeout bounds each dial.
	HandshakeTimeout time.Duration
	// Header is sent with every dial, usually carrying the access token.
	Header http.Header
	// InboundBuffer is the capacity of the Messages channel.
	InboundBuffer int
	// OnDecodeError is told about frames that are not valid JSON. It is
	// called from the read goroutine.
	OnDecodeError func(error)
	Logger        *log.Logger
}

// DefaultConfig returns default WebSocket configuration.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		InboundBuffer:     1024,
	}
}

// WSTransport is a reconnecting websocket carrying JSON encoded
// zenith.Message frames. Send is safe for concurrent use.
type WSTransport struct {
	endpoint string
	config   Config
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	inbound chan zenith.Message
	states  chan State

	done chan struct{}
	wg   sync.WaitGroup
}

// Dial connects to endpoint and starts the read and ping loops.
func Dial(ctx context.Context, endpoint string, config *Config) (*WSTransport, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	t := &WSTransport{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		inbound:  make(chan zenith.Message, cfg.InboundBuffer),
		states:   make(chan State, 16),
		done:     make(chan struct{}),
	}

	if err := t.connect(ctx); err != nil {
		return nil, err
	}
	t.states <- StateConnected

	t.wg.Add(1)
	go t.readLoop()

	t.wg.Add(1)
	go t.pingLoop()

	return t, nil
}

// Messages delivers inbound frames in arrival order. It is closed by Close.
func (t *WSTransport) Messages() <-chan zenith.Message { return t.inbound }

// States delivers connection state changes. The first value is
// StateConnected. It is closed by Close.
func (t *WSTransport) States() <-chan State { return t.states }

// connect establishes WebSocket connection.
func (t *WSTransport) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: t.config.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, t.endpoint, t.config.Header)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	t.connMu.Lock()
	t.conn = conn
	t.connMu.Unlock()
	return nil
}

// Send writes msg as one text frame.
func (t *WSTransport) Send(msg zenith.Message) error {
	if t.closed.Load() {
		return ErrClosed
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()

	if t.conn == nil {
		return ErrNotConnected
	}
	t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
	if err := t.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s %s: %w", msg.Action, msg.Topic, err)
	}
	return nil
}

// Close closes the WebSocket connection and waits for the loops to exit.
func (t *WSTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}

	close(t.done)

	t.connMu.Lock()
	if t.conn != nil {
		t.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.conn.Close()
	}
	t.connMu.Unlock()

	t.wg.Wait()
	close(t.inbound)
	close(t.states)
	return nil
}

// readLoop reads frames until Close, reconnecting with exponential backoff
// whenever the socket fails.
func (t *WSTransport) readLoop() {
	defer t.wg.Done()

	for !t.closed.Load() {
		t.connMu.Lock()
		conn := t.conn
		t.connMu.Unlock()

		conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout))

		_, frame, err := conn.ReadMessage()
		if err != nil {
			if t.closed.Load() {
				return
			}
			t.logger.Printf("Error reading frame, reconnecting: %v", err)
			t.dropConn(conn)
			if !t.emitState(StateDisconnected) || !t.reconnect() {
				return
			}
			continue
		}

		var msg zenith.Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			derr := domain.NewDataError(domain.CodeInvalidJSON, domain.Truncate(string(frame)))
			t.logger.Printf("Error decoding frame: %v", derr)
			if t.config.OnDecodeError != nil {
				t.config.OnDecodeError(derr)
			}
			continue
		}

		select {
		case t.inbound <- msg:
		case <-t.done:
			return
		}
	}
}

func (t *WSTransport) dropConn(conn *websocket.Conn) {
	t.connMu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	t.connMu.Unlock()
	conn.Close()
}

// reconnect dials until it succeeds or the transport is closed. It reports
// false on close.
func (t *WSTransport) reconnect() bool {
	delay := t.config.ReconnectDelay
	for {
		select {
		case <-t.done:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), t.config.HandshakeTimeout)
		err := t.connect(ctx)
		cancel()
		if err == nil {
			if t.closed.Load() {
				t.connMu.Lock()
				t.conn.Close()
				t.connMu.Unlock()
				return false
			}
			return t.emitState(StateConnected)
		}
		t.logger.Printf("Error reconnecting to %s: %v", t.endpoint, err)

		delay *= 2
		if delay > t.config.MaxReconnectDelay {
			delay = t.config.MaxReconnectDelay
		}
	}
}

func (t *WSTransport) emitState(s State) bool {
	select {
	case t.states <- s:
		return true
	case <-t.done:
		return false
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (t *WSTransport) pingLoop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.connMu.Lock()
			if t.conn != nil {
				t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
				// A dead socket surfaces in readLoop.
				_ = t.conn.WriteMessage(websocket.PingMessage, nil)
			}
			t.connMu.Unlock()
		}
	}
}
