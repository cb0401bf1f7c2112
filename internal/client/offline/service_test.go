package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tmasync/internal/client/api"
	"github.com/iudanet/tmasync/internal/client/badge"
	"github.com/iudanet/tmasync/internal/client/connectivity"
	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/client/storage/boltdb"
	"github.com/iudanet/tmasync/internal/client/sync"
	"github.com/iudanet/tmasync/internal/models"
)

type attendance struct {
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
}

type fixture struct {
	store   *boltdb.Storage
	caller  *CallerMock
	manager *sync.ManagerMock
	counter *badge.Counter
	conn    *connectivity.Static
	service *Service
}

func newFixture(t *testing.T, online bool, call func(ctx context.Context, req api.Request) (json.RawMessage, error)) *fixture {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store:   store,
		caller:  &CallerMock{CallFunc: call},
		manager: &sync.ManagerMock{RegisterBackgroundSyncFunc: func(ctx context.Context, kind string) {}},
		counter: badge.NewCounter(store, nil, logger),
		conn:    connectivity.NewStatic(online),
	}
	f.service = NewService(f.caller, store, f.conn, f.counter, f.manager, DefaultEndpoints(), models.DefaultMaxRetries, logger)

	return f
}

func (f *fixture) pending(t *testing.T) []*models.QueueItem {
	t.Helper()
	items, err := f.store.GetPendingItems(context.Background(), "")
	require.NoError(t, err)
	return items
}

func TestMarkAttendanceOffline_QueuesWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, nil)

	result := f.service.MarkAttendanceOffline(ctx, attendance{PlayerID: "p1", Status: "present"})

	assert.Equal(t, StatusQueued, result.Status)
	assert.True(t, result.Offline)
	assert.NoError(t, result.Err)
	assert.Empty(t, f.caller.CallCalls())

	items := f.pending(t)
	require.Len(t, items, 1)
	assert.Equal(t, result.ItemID, items[0].ID)
	assert.Equal(t, models.KindAttendance, items[0].Kind)
	assert.Equal(t, "/rest/v1/attendance", items[0].Endpoint)
	assert.Equal(t, http.MethodPost, items[0].Method)
	assert.Equal(t, 0, items[0].RetryCount)
	assert.Equal(t, models.DefaultMaxRetries, items[0].MaxRetries)
	assert.JSONEq(t, `{"player_id":"p1","status":"present"}`, string(items[0].Payload))

	// Политика очереди: бейдж и регистрация фоновой синхронизации
	assert.Equal(t, int64(1), f.counter.GetBadgeCount(ctx))
	calls := f.manager.RegisterBackgroundSyncCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, models.KindAttendance, calls[0].Kind)
}

func TestSubmitFormOffline_OnlineSendsDirectly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true, func(ctx context.Context, req api.Request) (json.RawMessage, error) {
		assert.Equal(t, "/api/academy/feedback", req.Endpoint)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.JSONEq(t, `{"rating":5}`, string(req.Payload))
		return json.RawMessage(`{"id":"f1"}`), nil
	})

	result := f.service.SubmitFormOffline(ctx, "", "/api/academy/feedback", map[string]int{"rating": 5})

	assert.Equal(t, StatusSent, result.Status)
	assert.JSONEq(t, `{"id":"f1"}`, string(result.Response))
	assert.Empty(t, f.pending(t))
	assert.Equal(t, int64(0), f.counter.GetBadgeCount(ctx))
	assert.Empty(t, f.manager.RegisterBackgroundSyncCalls())
}

func TestCreateTrainingPlanOffline_DirectFailureQueues(t *testing.T) {
	ctx := context.Background()
	callErr := errors.New("request failed: connection reset")
	f := newFixture(t, true, func(ctx context.Context, req api.Request) (json.RawMessage, error) {
		return nil, callErr
	})

	result := f.service.CreateTrainingPlanOffline(ctx, map[string]string{"title": "Sprint drills"})

	assert.Equal(t, StatusQueued, result.Status)
	assert.False(t, result.Offline)
	assert.ErrorIs(t, result.Err, callErr)
	assert.Len(t, f.caller.CallCalls(), 1)

	items := f.pending(t)
	require.Len(t, items, 1)
	assert.Equal(t, models.KindTrainingPlan, items[0].Kind)
	assert.Equal(t, "/rest/v1/training_plans", items[0].Endpoint)
}

func TestUpdatePerformanceOffline_Headers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, nil)

	result := f.service.UpdatePerformanceOffline(ctx, map[string]int{"speed": 7})
	require.Equal(t, StatusQueued, result.Status)

	items := f.pending(t)
	require.Len(t, items, 1)
	assert.Equal(t, models.KindPerformanceUpdate, items[0].Kind)
	assert.Equal(t, "resolution=merge-duplicates", items[0].Headers["Prefer"])
}

func TestSendMessageOffline_AndAPICall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, nil)

	msg := f.service.SendMessageOffline(ctx, map[string]string{"text": "Training moved to 6pm"})
	require.Equal(t, StatusQueued, msg.Status)

	call := f.service.APICallOffline(ctx, "fee-payment", map[string]int{"amount": 50}, Options{
		Endpoint: "/api/academy/fees",
		Method:   http.MethodPut,
		Headers:  map[string]string{"X-Academy": "north"},
	})
	require.Equal(t, StatusQueued, call.Status)

	items := f.pending(t)
	require.Len(t, items, 2)
	assert.Equal(t, models.KindMessage, items[0].Kind)
	assert.Equal(t, "fee-payment", items[1].Kind)
	assert.Equal(t, http.MethodPut, items[1].Method)
	assert.Equal(t, "north", items[1].Headers["X-Academy"])
	assert.Equal(t, int64(2), f.counter.GetBadgeCount(ctx))
}

func TestAPICallOffline_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, nil)
	require.NoError(t, f.store.Close())

	result := f.service.MarkAttendanceOffline(ctx, attendance{PlayerID: "p1"})

	assert.Equal(t, StatusFailedToQueue, result.Status)
	assert.ErrorIs(t, result.Err, storage.ErrStorageClosed)
	assert.Empty(t, result.ItemID)
	assert.Empty(t, f.manager.RegisterBackgroundSyncCalls())
}

func TestAPICallOffline_InvalidPayload(t *testing.T) {
	f := newFixture(t, true, nil)

	result := f.service.APICallOffline(context.Background(), models.KindGenericForm, make(chan int), Options{Endpoint: "/x"})

	assert.Equal(t, StatusFailedToQueue, result.Status)
	assert.ErrorContains(t, result.Err, "failed to marshal payload")
	assert.Empty(t, f.caller.CallCalls())
}

func TestAPICallOffline_InvalidKind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false, nil)

	for _, kind := range []string{"all", "Bad Kind", ""} {
		result := f.service.APICallOffline(ctx, kind, attendance{PlayerID: "p1"}, Options{Endpoint: "/rest/v1/x"})
		assert.Equal(t, StatusFailedToQueue, result.Status, kind)
		assert.ErrorContains(t, result.Err, "invalid action kind", kind)
	}

	// "all" совпал бы с тегом sync-all всей очереди
	result := f.service.SubmitFormOffline(ctx, "all", "/rest/v1/forms", attendance{PlayerID: "p1"})
	assert.Equal(t, StatusFailedToQueue, result.Status)

	assert.Empty(t, f.pending(t))
	assert.Empty(t, f.caller.CallCalls())
	assert.Empty(t, f.manager.RegisterBackgroundSyncCalls())
	assert.Equal(t, int64(0), f.counter.GetBadgeCount(ctx))
}

func TestSetupOfflineIndicators(t *testing.T) {
	var buf bytes.Buffer
	conn := connectivity.NewStatic(false)
	indicator := NewTerminalIndicator(&buf)

	stop := SetupOfflineIndicators(conn, indicator)
	assert.Equal(t, OfflineMessage+"\n", buf.String())

	conn.Set(true)
	assert.Contains(t, buf.String(), "Back online")

	buf.Reset()
	conn.Set(false)
	assert.Equal(t, OfflineMessage+"\n", buf.String())

	stop()
	buf.Reset()
	conn.Set(true)
	assert.Empty(t, buf.String())
}
