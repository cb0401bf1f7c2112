package bridge

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// agentServer отправляет каждому подключению сообщения и закрывает его
func agentServer(t *testing.T, perConn ...[]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var conns atomic.Int32
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		n := int(conns.Add(1)) - 1
		if n < len(perConn) {
			for _, msg := range perConn[n] {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
					return
				}
			}
		}

		// Последнее соединение держим открытым до закрытия клиентом
		if n >= len(perConn)-1 {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
	}))

	return server, &conns
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/messages"
}

func TestBridge_OnAndUnsubscribe(t *testing.T) {
	b := New("ws://unused", testLogger())
	ctx := context.Background()

	var got []string
	unsubscribe := b.On(models.MessageSyncSuccess, func(ctx context.Context, msg models.Message) {
		got = append(got, msg.ItemID)
	})
	b.On(models.MessageSyncFailed, func(ctx context.Context, msg models.Message) {
		got = append(got, "failed:"+msg.ItemID)
	})
	assert.Equal(t, 2, b.Handlers())

	b.Dispatch(ctx, models.Message{Type: models.MessageSyncSuccess, ItemID: "a"})
	b.Dispatch(ctx, models.Message{Type: models.MessageSyncFailed, ItemID: "b"})
	b.Dispatch(ctx, models.Message{Type: models.MessageIncrementBadge})

	unsubscribe()
	unsubscribe()
	b.Dispatch(ctx, models.Message{Type: models.MessageSyncSuccess, ItemID: "c"})

	assert.Equal(t, []string{"a", "failed:b"}, got)
	assert.Equal(t, 1, b.Handlers())
}

func TestBridge_ListenDispatchesAndReconnects(t *testing.T) {
	server, conns := agentServer(t,
		[]string{
			`{"type":"SYNC_SUCCESS","sync_type":"attendance","item_id":"a"}`,
			`not json`,
			`{"type":"UNKNOWN"}`,
		},
		[]string{
			`{"type":"INCREMENT_BADGE"}`,
		},
	)
	defer server.Close()

	b := New(wsURL(server), testLogger())
	b.minBackoff = 10 * time.Millisecond

	var (
		mu  sync.Mutex
		got []models.MessageType
	)
	record := func(ctx context.Context, msg models.Message) {
		mu.Lock()
		got = append(got, msg.Type)
		mu.Unlock()
	}
	b.On(models.MessageSyncSuccess, record)
	b.On(models.MessageIncrementBadge, record)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Listen(ctx)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []models.MessageType{models.MessageSyncSuccess, models.MessageIncrementBadge}, got)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestBridge_ListenWithoutAgent(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(server)
	server.Close()

	b := New(url, testLogger())
	b.minBackoff = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, b.Listen(ctx))
}
