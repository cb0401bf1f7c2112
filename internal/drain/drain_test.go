package drain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tmasync/internal/client/storage/boltdb"
	"github.com/iudanet/tmasync/internal/models"
)

type testBadge struct {
	count atomic.Int64
}

func (b *testBadge) AddBadge(ctx context.Context, delta int64) int64 {
	return b.count.Add(delta)
}

type recordingNotifier struct {
	messages []models.Message
	mu       sync.Mutex
}

func (n *recordingNotifier) Notify(ctx context.Context, msg models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) Messages() []models.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Message(nil), n.messages...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestStore(t *testing.T) *boltdb.Storage {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "drain.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func enqueue(t *testing.T, store *boltdb.Storage, kind, payload string) string {
	t.Helper()

	id, err := store.AddToSyncQueue(context.Background(), &models.QueueItem{
		Kind:       kind,
		Endpoint:   "/rest/v1/" + kind,
		Payload:    json.RawMessage(payload),
		MaxRetries: models.DefaultMaxRetries,
	})
	require.NoError(t, err)
	return id
}

func TestDrain_FIFOAllSucceed(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	a := enqueue(t, store, models.KindAttendance, `{"n":"A"}`)
	b := enqueue(t, store, models.KindGenericForm, `{"n":"B"}`)
	c := enqueue(t, store, models.KindTrainingPlan, `{"n":"C"}`)

	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			return nil
		},
	}
	badge := &testBadge{}
	badge.count.Store(3)
	notifier := &recordingNotifier{}

	d := New(store, store, sender, badge, notifier, Config{Owner: "cli"}, testLogger())
	result, err := d.Drain(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 3, result.Succeeded)
	assert.Empty(t, result.Permanent)

	calls := sender.ReplayCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{a, b, c}, []string{calls[0].Item.ID, calls[1].Item.ID, calls[2].Item.ID})

	pending, err := store.GetPendingItems(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Equal(t, int64(0), badge.count.Load())

	messages := notifier.Messages()
	require.Len(t, messages, 3)
	for _, msg := range messages {
		assert.Equal(t, models.MessageSyncSuccess, msg.Type)
		assert.False(t, msg.Timestamp.IsZero())
	}
	assert.Equal(t, models.KindAttendance, messages[0].SyncType)

	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.NotZero(t, ts)
}

func TestDrain_EmptyQueue(t *testing.T) {
	store := createTestStore(t)
	sender := &SenderMock{}

	d := New(store, store, sender, nil, nil, Config{Owner: "cli"}, testLogger())
	result, err := d.Drain(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, &Result{}, result)
	assert.Empty(t, sender.ReplayCalls())
}

func TestDrain_KindFilter(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	enqueue(t, store, models.KindAttendance, `{}`)
	plan := enqueue(t, store, models.KindTrainingPlan, `{}`)

	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			return nil
		},
	}

	d := New(store, nil, sender, nil, nil, Config{Owner: "agent"}, testLogger())
	result, err := d.Drain(ctx, models.KindTrainingPlan)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, plan, sender.ReplayCalls()[0].Item.ID)

	pending, err := store.GetPendingItems(ctx, "")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestDrain_FailureDoesNotBlockLaterItems(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	bad := enqueue(t, store, models.KindAttendance, `{"n":"bad"}`)
	good := enqueue(t, store, models.KindAttendance, `{"n":"good"}`)

	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			if item.ID == bad {
				return errors.New("server error (503): unavailable")
			}
			return nil
		},
	}
	notifier := &recordingNotifier{}

	d := New(store, nil, sender, nil, notifier, Config{Owner: "cli"}, testLogger())
	result, err := d.Drain(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Retrying)

	_, err = store.GetItem(ctx, good)
	assert.Error(t, err, "good item must be removed")

	item, err := store.GetItem(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, 1, item.RetryCount)
	assert.Equal(t, "server error (503): unavailable", item.LastError)
	assert.Empty(t, item.LeaseOwner, "lease released after failure")

	messages := notifier.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, models.MessageSyncFailed, messages[0].Type)
	assert.False(t, messages[0].Permanent)
	assert.Equal(t, models.MessageSyncSuccess, messages[1].Type)
}

func TestDrain_RetryCeiling(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	id := enqueue(t, store, models.KindAttendance, `{}`)

	var attempts atomic.Int32
	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			attempts.Add(1)
			return errors.New("connection refused")
		},
	}
	badge := &testBadge{}
	badge.count.Store(1)
	notifier := &recordingNotifier{}

	d := New(store, nil, sender, badge, notifier, Config{Owner: "cli"}, testLogger())

	// Прогоняем больше проходов, чем допускает потолок
	var permanent []string
	for i := 0; i < models.DefaultMaxRetries+5; i++ {
		result, err := d.Drain(ctx, "")
		require.NoError(t, err)
		permanent = append(permanent, result.Permanent...)
	}

	assert.Equal(t, int32(models.DefaultMaxRetries+1), attempts.Load())
	assert.Equal(t, []string{id}, permanent)

	pending, err := store.GetPendingItems(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)

	letters, err := store.ListDeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, id, letters[0].Item.ID)
	assert.Contains(t, letters[0].Reason, "connection refused")

	assert.Equal(t, int64(0), badge.count.Load())

	messages := notifier.Messages()
	require.Len(t, messages, models.DefaultMaxRetries+1)
	assert.True(t, messages[len(messages)-1].Permanent)
	assert.False(t, messages[0].Permanent)
}

func TestDrain_PermanentErrorSkipsRetries(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	id := enqueue(t, store, models.KindGenericForm, `{}`)

	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			return fmt.Errorf("server error (422): invalid form: %w", ErrPermanent)
		},
	}

	d := New(store, nil, sender, nil, nil, Config{Owner: "cli"}, testLogger())
	result, err := d.Drain(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, result.Permanent)
	assert.Len(t, sender.ReplayCalls(), 1)
}

func TestDrain_TimeoutIsFailedAttempt(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	slow := enqueue(t, store, models.KindAttendance, `{"n":"slow"}`)
	fast := enqueue(t, store, models.KindAttendance, `{"n":"fast"}`)

	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			if item.ID == slow {
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		},
	}

	d := New(store, nil, sender, nil, nil, Config{Owner: "cli", RequestTimeout: 20 * time.Millisecond}, testLogger())

	start := time.Now()
	result, err := d.Drain(ctx, "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Retrying)

	item, err := store.GetItem(ctx, slow)
	require.NoError(t, err)
	assert.Equal(t, 1, item.RetryCount)
	assert.Contains(t, item.LastError, "deadline exceeded")

	_, err = store.GetItem(ctx, fast)
	assert.Error(t, err)
}

func TestDrain_SkipsItemLeasedByAnotherOwner(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	leased := enqueue(t, store, models.KindAttendance, `{}`)
	free := enqueue(t, store, models.KindAttendance, `{}`)

	ok, err := store.ClaimItem(ctx, leased, "agent", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			return nil
		},
	}

	d := New(store, nil, sender, nil, nil, Config{Owner: "cli"}, testLogger())
	result, err := d.Drain(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, sender.ReplayCalls(), 1)
	assert.Equal(t, free, sender.ReplayCalls()[0].Item.ID)
}

func TestDrain_ConcurrentPassesSendOnce(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	const n = 20
	for i := 0; i < n; i++ {
		enqueue(t, store, models.KindAttendance, fmt.Sprintf(`{"n":%d}`, i))
	}

	var (
		mu    sync.Mutex
		sends = map[string]int{}
	)
	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			mu.Lock()
			sends[item.ID]++
			mu.Unlock()
			time.Sleep(time.Millisecond)
			return nil
		},
	}

	cli := New(store, nil, sender, nil, nil, Config{Owner: "cli"}, testLogger())
	agent := New(store, nil, sender, nil, nil, Config{Owner: "agent"}, testLogger())

	var (
		wg      sync.WaitGroup
		results [2]*Result
	)
	for i, d := range []*Drainer{cli, agent} {
		wg.Add(1)
		go func(i int, d *Drainer) {
			defer wg.Done()
			result, err := d.Drain(ctx, "")
			assert.NoError(t, err)
			results[i] = result
		}(i, d)
	}
	wg.Wait()

	assert.Len(t, sends, n)
	for id, count := range sends {
		assert.Equal(t, 1, count, "item %s sent more than once", id)
	}
	assert.Equal(t, n, results[0].Succeeded+results[1].Succeeded)

	pending, err := store.GetPendingItems(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// TestDrain_SameDrainerConcurrentPasses проверяет, что два прохода одного
// Drainer (одинаковый префикс владельца) не отправляют запись дважды
func TestDrain_SameDrainerConcurrentPasses(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	const n = 5
	for i := 0; i < n; i++ {
		enqueue(t, store, models.KindAttendance, fmt.Sprintf(`{"n":%d}`, i))
	}

	var sends atomic.Int32
	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			sends.Add(1)
			time.Sleep(20 * time.Millisecond)
			return nil
		},
	}
	badge := &testBadge{}
	badge.count.Store(n)
	notifier := &recordingNotifier{}

	d := New(store, nil, sender, badge, notifier, Config{Owner: "agent"}, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.Drain(ctx, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(n), sends.Load())
	assert.Equal(t, int64(0), badge.count.Load())
	assert.Len(t, notifier.Messages(), n)
}

func TestDrain_StopsOnCancelledContext(t *testing.T) {
	store := createTestStore(t)
	enqueue(t, store, models.KindAttendance, `{}`)
	enqueue(t, store, models.KindAttendance, `{}`)

	ctx, cancel := context.WithCancel(context.Background())

	sender := &SenderMock{
		ReplayFunc: func(ctx context.Context, item *models.QueueItem) error {
			cancel()
			return nil
		},
	}

	d := New(store, nil, sender, nil, nil, Config{Owner: "cli"}, testLogger())
	result, err := d.Drain(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sender.ReplayCalls(), 1)
	assert.Equal(t, 1, result.Attempted)
}
