package badge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/client/storage/boltdb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingNotifier struct {
	calls     []string
	mu        sync.Mutex
	supported bool
}

func (n *recordingNotifier) Supported() bool { return n.supported }

func (n *recordingNotifier) Set(count int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, "set:"+strconv.FormatInt(count, 10))
	return nil
}

func (n *recordingNotifier) Clear() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, "clear")
	return nil
}

func (n *recordingNotifier) Calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, path string) *boltdb.Storage {
	t.Helper()
	store, err := boltdb.New(context.Background(), path)
	require.NoError(t, err)
	return store
}

func TestCounter_NeverNegative(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))
	defer store.Close()

	counter := NewCounter(store, nil, testLogger())
	assert.False(t, counter.IsBadgeSupported())

	for i := 0; i < 5; i++ {
		assert.Equal(t, int64(0), counter.DecrementBadge(ctx))
	}
	assert.Equal(t, int64(0), counter.GetBadgeCount(ctx))

	assert.Equal(t, int64(1), counter.IncrementBadge(ctx))
	assert.Equal(t, int64(2), counter.OnNotificationReceived(ctx))
	assert.Equal(t, int64(1), counter.OnNotificationRead(ctx))

	counter.SetBadgeCount(ctx, -3)
	assert.Equal(t, int64(0), counter.GetBadgeCount(ctx))
}

func TestCounter_PersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.db")

	store := openStore(t, path)
	NewCounter(store, nil, testLogger()).SetBadgeCount(ctx, 5)
	require.NoError(t, store.Close())

	// Имитируем перезапуск приложения
	store = openStore(t, path)
	defer store.Close()

	notifier := &recordingNotifier{supported: true}
	counter := NewCounter(store, notifier, testLogger())
	assert.Equal(t, int64(5), counter.GetBadgeCount(ctx))

	counter.InitializeBadge(ctx)
	assert.Equal(t, []string{"set:5"}, notifier.Calls())
}

func TestCounter_DisplayClearsOnZero(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))
	defer store.Close()

	notifier := &recordingNotifier{supported: true}
	counter := NewCounter(store, notifier, testLogger())

	counter.IncrementBadge(ctx)
	counter.IncrementBadge(ctx)
	counter.DecrementBadge(ctx)
	counter.ClearBadge(ctx)

	assert.Equal(t, []string{"set:1", "set:2", "set:1", "clear"}, notifier.Calls())
}

func TestCounter_UnsupportedStillPersists(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))
	defer store.Close()

	notifier := &recordingNotifier{supported: false}
	counter := NewCounter(store, notifier, testLogger())

	counter.InitializeBadge(ctx)
	counter.IncrementBadge(ctx)

	assert.Empty(t, notifier.Calls())
	assert.Equal(t, int64(1), counter.GetBadgeCount(ctx))
}

func TestCounter_StorageErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("disk full")

	mock := &storage.BadgeStorageMock{
		GetBadgeCountFunc: func(ctx context.Context) (int64, error) {
			return 0, storeErr
		},
		SetBadgeCountFunc: func(ctx context.Context, count int64) error {
			return storeErr
		},
		AddBadgeCountFunc: func(ctx context.Context, delta int64) (int64, error) {
			return 0, storeErr
		},
	}

	notifier := &recordingNotifier{supported: true}
	counter := NewCounter(mock, notifier, testLogger())

	assert.NotPanics(t, func() {
		counter.SetBadgeCount(ctx, 3)
		counter.ClearBadge(ctx)
		assert.Equal(t, int64(0), counter.IncrementBadge(ctx))
		assert.Equal(t, int64(0), counter.GetBadgeCount(ctx))
	})

	assert.Empty(t, notifier.Calls())
	assert.Len(t, mock.AddBadgeCountCalls(), 1)
	assert.Len(t, mock.SetBadgeCountCalls(), 2)
}

func TestCounter_SetupBadgeAutoClearing(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))
	defer store.Close()

	counter := NewCounter(store, nil, testLogger())
	counter.SetBadgeCount(ctx, 4)

	viewed := make(chan struct{})
	closed := make(chan struct{})
	close(closed)

	stop := counter.SetupBadgeAutoClearing(ctx, viewed, closed)

	viewed <- struct{}{}
	require.Eventually(t, func() bool {
		return counter.GetBadgeCount(ctx) == 0
	}, time.Second, 5*time.Millisecond)

	counter.SetBadgeCount(ctx, 2)
	stop()
	stop()

	// После stop триггер больше не обрабатывается
	select {
	case viewed <- struct{}{}:
		t.Fatal("trigger is still watched after stop")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, int64(2), counter.GetBadgeCount(ctx))
}

func TestCounter_AutoClearingStopsWithContext(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stop := NewCounter(store, nil, testLogger()).SetupBadgeAutoClearing(ctx, make(chan struct{}))

	cancel()
	stop()
}
