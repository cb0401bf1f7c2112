// Package hub keeps the websocket connections of running clients and
// delivers agent messages to them.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/tmasync/internal/models"
)

const (
	// writeWait время на запись одного сообщения
	writeWait = 10 * time.Second
	// pongWait клиент должен ответить на ping за это время
	pongWait = 60 * time.Second
	// pingPeriod должен быть меньше pongWait
	pingPeriod = (pongWait * 9) / 10
	// sendBuffer размер очереди исходящих сообщений клиента
	sendBuffer = 16
)

// outbound сообщение в очереди клиента
type outbound struct {
	msg  models.Message
	data []byte
	// exclusive сообщение адресовано только этому клиенту (SendToOne)
	exclusive bool
}

// client одно подключение клиента
type client struct {
	conn *websocket.Conn
	send chan outbound
	done chan struct{}
	once sync.Once
	id   uint64
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub tracks connected clients
type Hub struct {
	logger      *slog.Logger
	clients     map[uint64]*client
	undelivered func(models.Message)
	upgrader    websocket.Upgrader
	wg          sync.WaitGroup
	nextID      uint64
	mu          sync.RWMutex
	closed      bool
}

// New creates a Hub
func New(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[uint64]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// OnUndelivered sets fn to receive SendToOne messages that were queued
// for a client but never written because it disconnected first.
func (h *Hub) OnUndelivered(fn func(models.Message)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undelivered = fn
}

// ServeWS upgrades the request and registers the connection.
// Cross-origin browser requests are rejected by the default origin check.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.nextID++
	c := &client{
		id:   h.nextID,
		conn: conn,
		send: make(chan outbound, sendBuffer),
		done: make(chan struct{}),
	}
	h.clients[c.id] = c
	h.wg.Add(2)
	h.mu.Unlock()

	h.logger.Info("Client connected", "client_id", c.id, "remote_addr", r.RemoteAddr)

	go h.writePump(c)
	go h.readPump(c)
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client and returns how many accepted it.
// Slow clients whose buffer is full miss the message.
func (h *Hub) Broadcast(msg models.Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", "type", msg.Type, "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients {
		select {
		case c.send <- outbound{msg: msg, data: data}:
			delivered++
		default:
			h.logger.Warn("Client buffer is full, dropping message", "client_id", c.id, "type", msg.Type)
		}
	}

	return delivered
}

// SendToOne queues msg for the oldest client that accepts it.
// Used for badge deltas: the badge store is shared, so exactly one
// client must apply each delta. If that client disconnects before the
// message is written, it goes to the OnUndelivered callback.
func (h *Hub) SendToOne(msg models.Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", "type", msg.Type, "error", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	var target *client
	for _, c := range h.clients {
		if target == nil || c.id < target.id {
			target = c
		}
	}
	if target == nil {
		return false
	}

	select {
	case target.send <- outbound{msg: msg, data: data, exclusive: true}:
		return true
	default:
		h.logger.Warn("Client buffer is full, dropping message", "client_id", target.id, "type", msg.Type)
		return false
	}
}

// Run waits for ctx and then closes all connections
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()
	h.Close()
	return nil
}

// Close disconnects all clients and waits for their goroutines
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	h.wg.Wait()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		h.logger.Info("Client disconnected", "client_id", c.id)
	}
	h.mu.Unlock()
	c.close()

	// Новые сообщения клиенту уже не попадут: он удален из списка под блокировкой
	for {
		select {
		case out := <-c.send:
			h.lost(c, out)
		default:
			return
		}
	}
}

// lost передает неотправленное адресное сообщение обработчику
func (h *Hub) lost(c *client, out outbound) {
	if !out.exclusive {
		return
	}

	h.mu.RLock()
	fn := h.undelivered
	h.mu.RUnlock()

	h.logger.Warn("Message not delivered, client disconnected", "client_id", c.id, "type", out.msg.Type)
	if fn != nil {
		fn(out.msg)
	}
}

// readPump держит соединение: клиент присылает только pong и close
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		h.wg.Done()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", "client_id", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		h.wg.Done()
	}()

	for {
		select {
		case <-c.done:
			return
		case out := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, out.data); err != nil {
				h.lost(c, out)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
