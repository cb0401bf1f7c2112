package boltdb

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeCount_DefaultsToZero(t *testing.T) {
	store := createTestQueueStorage(t)

	count, err := store.GetBadgeCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAddBadgeCount_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	store := createTestQueueStorage(t)

	count, err := store.AddBadgeCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.AddBadgeCount(ctx, -5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	count, err = store.AddBadgeCount(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSetBadgeCount(t *testing.T) {
	ctx := context.Background()
	store := createTestQueueStorage(t)

	require.NoError(t, store.SetBadgeCount(ctx, 7))
	count, err := store.GetBadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	require.NoError(t, store.SetBadgeCount(ctx, -3))
	count, err = store.GetBadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAddBadgeCount_ConcurrentDeltas(t *testing.T) {
	ctx := context.Background()
	store := createTestQueueStorage(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddBadgeCount(ctx, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.GetBadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), count)
}

func TestBadgeCount_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "badge.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	_, err = store.AddBadgeCount(ctx, 4)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	count, err := store.GetBadgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
