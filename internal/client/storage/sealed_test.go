package storage_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/client/storage/boltdb"
	"github.com/iudanet/tmasync/internal/crypto"
	"github.com/iudanet/tmasync/internal/models"
)

func createTestStore(t *testing.T) *boltdb.Storage {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sealed.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestSealed_PayloadEncryptedAtRest(t *testing.T) {
	ctx := context.Background()
	raw := createTestStore(t)

	sealed, err := storage.NewSealed(ctx, raw, "device passphrase")
	require.NoError(t, err)

	item := &models.QueueItem{
		Kind:       models.KindAttendance,
		Endpoint:   "/rest/v1/attendance",
		Payload:    json.RawMessage(`{"player_id":"p1","status":"present"}`),
		MaxRetries: 3,
	}
	id, err := sealed.AddToSyncQueue(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, id, item.ID)
	assert.JSONEq(t, `{"player_id":"p1","status":"present"}`, string(item.Payload), "caller's item is not modified")

	// В хранилище лежит зашифрованное значение
	stored, err := raw.GetItem(ctx, id)
	require.NoError(t, err)
	var text string
	require.NoError(t, json.Unmarshal(stored.Payload, &text))
	assert.True(t, crypto.IsSealed(text))
	assert.NotContains(t, text, "player_id")

	// Через обертку payload возвращается расшифрованным
	got, err := sealed.GetItem(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"player_id":"p1","status":"present"}`, string(got.Payload))

	pending, err := sealed.GetPendingItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.JSONEq(t, `{"player_id":"p1","status":"present"}`, string(pending[0].Payload))

	failed, err := sealed.RecordFailure(ctx, id, "", "timeout")
	require.NoError(t, err)
	assert.JSONEq(t, `{"player_id":"p1","status":"present"}`, string(failed.Payload))

	require.NoError(t, sealed.MoveToDeadLetter(ctx, id, "exhausted"))
	letters, err := sealed.ListDeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.JSONEq(t, `{"player_id":"p1","status":"present"}`, string(letters[0].Item.Payload))
}

func TestSealed_PlainItemsPassThrough(t *testing.T) {
	ctx := context.Background()
	raw := createTestStore(t)

	// Запись создана до включения шифрования
	id, err := raw.AddToSyncQueue(ctx, &models.QueueItem{
		Kind:    models.KindMessage,
		Payload: json.RawMessage(`{"text":"hi"}`),
	})
	require.NoError(t, err)

	sealed, err := storage.NewSealed(ctx, raw, "device passphrase")
	require.NoError(t, err)

	got, err := sealed.GetItem(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, string(got.Payload))
}

func TestSealed_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	raw := createTestStore(t)

	sealed, err := storage.NewSealed(ctx, raw, "right")
	require.NoError(t, err)

	id, err := sealed.AddToSyncQueue(ctx, &models.QueueItem{
		Kind:    models.KindMessage,
		Payload: json.RawMessage(`{"text":"hi"}`),
	})
	require.NoError(t, err)

	wrong, err := storage.NewSealed(ctx, raw, "wrong")
	require.NoError(t, err)

	_, err = wrong.GetItem(ctx, id)
	assert.Error(t, err)
}

func TestNewSealed_EmptyPassphrase(t *testing.T) {
	_, err := storage.NewSealed(context.Background(), createTestStore(t), "")
	assert.Error(t, err)
}

func TestWithBadge_RoutesBadgeCalls(t *testing.T) {
	ctx := context.Background()
	raw := createTestStore(t)

	var added []int64
	badge := &storage.BadgeStorageMock{
		AddBadgeCountFunc: func(ctx context.Context, delta int64) (int64, error) {
			added = append(added, delta)
			return 42, nil
		},
		GetBadgeCountFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
		SetBadgeCountFunc: func(ctx context.Context, count int64) error {
			return nil
		},
	}

	store := storage.WithBadge(raw, badge)

	count, err := store.AddBadgeCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.Equal(t, []int64{1}, added)

	require.NoError(t, store.SetBadgeCount(ctx, 3))
	assert.Len(t, badge.SetBadgeCountCalls(), 1)

	// Локальный счетчик не тронут
	local, err := raw.GetBadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), local)

	// Очередь по-прежнему работает через исходное хранилище
	_, err = store.AddToSyncQueue(ctx, &models.QueueItem{Kind: models.KindMessage, Payload: json.RawMessage(`{}`)})
	require.NoError(t, err)

	require.NoError(t, store.Close())
}
