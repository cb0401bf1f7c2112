// Package bridge delivers messages from the background agent to the
// running client and reconciles its local state.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/tmasync/internal/models"
)

const (
	// pongWait агент отправляет ping чаще этого интервала
	pongWait = 60 * time.Second

	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// Handler processes one agent message
type Handler func(ctx context.Context, msg models.Message)

// Bridge listens to the agent message channel and dispatches messages to handlers
type Bridge struct {
	dialer     *websocket.Dialer
	logger     *slog.Logger
	handlers   map[models.MessageType]map[int]Handler
	url        string
	nextID     int
	minBackoff time.Duration
	maxBackoff time.Duration
	mu         sync.RWMutex
}

// New creates a Bridge for the agent websocket URL
func New(url string, logger *slog.Logger) *Bridge {
	return &Bridge{
		url:        url,
		dialer:     websocket.DefaultDialer,
		logger:     logger,
		handlers:   make(map[models.MessageType]map[int]Handler),
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// On registers handler for messages of type t.
// The returned function removes it; calling it more than once is safe.
func (b *Bridge) On(t models.MessageType, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[t] == nil {
		b.handlers[t] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[t][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers[t], id)
			b.mu.Unlock()
		})
	}
}

// Handlers returns the number of registered handlers
func (b *Bridge) Handlers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, hs := range b.handlers {
		n += len(hs)
	}
	return n
}

// Dispatch calls every handler registered for msg.Type
func (b *Bridge) Dispatch(ctx context.Context, msg models.Message) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[msg.Type]))
	for _, h := range b.handlers[msg.Type] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, msg)
	}
}

// Listen connects to the agent and dispatches messages until ctx is done.
// Lost connections are re-established with exponential backoff.
func (b *Bridge) Listen(ctx context.Context) error {
	backoff := b.minBackoff

	for {
		conn, _, err := b.dialer.DialContext(ctx, b.url, nil)
		if err == nil {
			b.logger.Info("Connected to background agent", "url", b.url)
			backoff = b.minBackoff

			err = b.readLoop(ctx, conn)
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Warn("Connection to background agent lost", "error", err)
		} else {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Debug("Background agent is not reachable", "error", err, "retry_in", backoff)
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		backoff = min(backoff*2, b.maxBackoff)
	}
}

func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Закрытие соединения прерывает блокирующий ReadMessage
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer func() {
		stop()
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			b.logger.Warn("Invalid agent message", "error", err)
			continue
		}
		if !msg.Type.Valid() {
			b.logger.Warn("Unknown agent message type", "type", msg.Type)
			continue
		}

		b.Dispatch(ctx, msg)
	}
}
