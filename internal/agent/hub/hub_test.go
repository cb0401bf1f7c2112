package hub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iudanet/tmasync/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()

	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	server := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(func() {
		h.Close()
		server.Close()
	})

	return h, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg models.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_Broadcast(t *testing.T) {
	h, url := newTestHub(t)

	assert.Equal(t, 0, h.Broadcast(models.Message{Type: models.MessageSyncSuccess}))

	first := dial(t, url)
	second := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 2 }, time.Second, 5*time.Millisecond)

	n := h.Broadcast(models.Message{Type: models.MessageSyncSuccess, ItemID: "a", SyncType: models.KindAttendance})
	assert.Equal(t, 2, n)

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, models.MessageSyncSuccess, msg.Type)
		assert.Equal(t, "a", msg.ItemID)
	}
}

func TestHub_SendToOneUsesOldestClient(t *testing.T) {
	h, url := newTestHub(t)

	assert.False(t, h.SendToOne(models.Message{Type: models.MessageIncrementBadge}))

	first := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 5*time.Millisecond)
	second := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 2 }, time.Second, 5*time.Millisecond)

	require.True(t, h.SendToOne(models.Message{Type: models.MessageIncrementBadge}))
	assert.Equal(t, models.MessageIncrementBadge, readMessage(t, first).Type)

	// Второй клиент сообщение не получает
	require.NoError(t, second.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err := second.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	h, url := newTestHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_RunClosesClients(t *testing.T) {
	h, url := newTestHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.Run(ctx)
	}()
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 0, h.Count())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Новые подключения после закрытия не регистрируются
	late, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		defer late.Close()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 0, h.Count())
	}
}

func TestHub_UndeliveredSendToOne(t *testing.T) {
	h, _ := newTestHub(t)

	var lost []models.Message
	h.OnUndelivered(func(msg models.Message) {
		lost = append(lost, msg)
	})

	// Соединение без pump: сообщения остаются в буфере клиента
	conns := make(chan *websocket.Conn, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(server.Close)
	dial(t, "ws"+strings.TrimPrefix(server.URL, "http"))

	c := &client{id: 1, conn: <-conns, send: make(chan outbound, sendBuffer), done: make(chan struct{})}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	require.True(t, h.SendToOne(models.Message{Type: models.MessageIncrementBadge}))
	require.Equal(t, 1, h.Broadcast(models.Message{Type: models.MessageSyncSuccess}))

	h.unregister(c)

	// Широковещательные сообщения не возвращаются, адресное уходит обработчику
	require.Len(t, lost, 1)
	assert.Equal(t, models.MessageIncrementBadge, lost[0].Type)
	assert.Equal(t, 0, h.Count())
	assert.False(t, h.SendToOne(models.Message{Type: models.MessageDecrementBadge}))
}
