package bridge

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tmasync/internal/client/badge"
	"github.com/iudanet/tmasync/internal/client/storage/boltdb"
	"github.com/iudanet/tmasync/internal/models"
)

type recordingIndicator struct {
	updates []models.QueueStats
}

func (i *recordingIndicator) Update(stats *models.QueueStats) {
	i.updates = append(i.updates, *stats)
}

type statsFunc func(ctx context.Context) (*models.QueueStats, error)

func (f statsFunc) GetSyncQueueStats(ctx context.Context) (*models.QueueStats, error) {
	return f(ctx)
}

func TestWire(t *testing.T) {
	ctx := context.Background()

	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	defer store.Close()

	counter := badge.NewCounter(store, nil, testLogger())
	indicator := &recordingIndicator{}
	b := New("ws://unused", testLogger())

	unsubscribe := Wire(b, store, indicator, counter, testLogger())
	assert.Equal(t, 4, b.Handlers())

	b.Dispatch(ctx, models.Message{Type: models.MessageIncrementBadge})
	b.Dispatch(ctx, models.Message{Type: models.MessageIncrementBadge})
	b.Dispatch(ctx, models.Message{Type: models.MessageDecrementBadge})
	assert.Equal(t, int64(1), counter.GetBadgeCount(ctx))

	b.Dispatch(ctx, models.Message{Type: models.MessageSyncSuccess, ItemID: "a"})
	b.Dispatch(ctx, models.Message{Type: models.MessageSyncFailed, ItemID: "b", Permanent: true})
	require.Len(t, indicator.updates, 2)
	assert.Equal(t, 0, indicator.updates[0].Pending)

	// После отписки обработчики не вызываются
	unsubscribe()
	assert.Equal(t, 0, b.Handlers())
	b.Dispatch(ctx, models.Message{Type: models.MessageIncrementBadge})
	assert.Equal(t, int64(1), counter.GetBadgeCount(ctx))
}

func TestWire_StatsError(t *testing.T) {
	ctx := context.Background()

	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	defer store.Close()

	indicator := &recordingIndicator{}
	b := New("ws://unused", testLogger())
	failing := statsFunc(func(ctx context.Context) (*models.QueueStats, error) {
		return nil, errors.New("storage is closed")
	})

	Wire(b, failing, indicator, badge.NewCounter(store, nil, testLogger()), testLogger())
	b.Dispatch(ctx, models.Message{Type: models.MessageSyncSuccess})

	assert.Empty(t, indicator.updates)
}

func TestTerminalPendingIndicator(t *testing.T) {
	var buf bytes.Buffer
	indicator := NewTerminalPendingIndicator(&buf)

	indicator.Update(&models.QueueStats{Pending: 3})
	indicator.Update(&models.QueueStats{Pending: 2, Failed: 1})
	indicator.Update(&models.QueueStats{Failed: 1})
	indicator.Update(&models.QueueStats{})

	assert.Equal(t,
		"⏳ 3 actions waiting to sync\n"+
			"⏳ 2 actions waiting to sync, 1 failed\n"+
			"✗ 1 actions failed to sync\n"+
			"✓ All actions synced\n",
		buf.String())
}
