package storage

import (
	"context"
	"time"

	"github.com/iudanet/tmasync/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage defines the durable store of pending operations.
// Both the CLI client and the background agent work through this interface,
// nothing reads or writes the underlying buckets/tables directly.
type QueueStorage interface {
	// AddToSyncQueue persists a new item and returns its ID.
	// Assigns ID (if empty), Seq and CreatedAt; RetryCount is reset to 0.
	AddToSyncQueue(ctx context.Context, item *models.QueueItem) (string, error)

	// GetPendingItems returns items still in the queue, oldest first.
	// Empty kind means all kinds.
	GetPendingItems(ctx context.Context, kind string) ([]*models.QueueItem, error)

	// GetItem retrieves one item by ID
	// Returns ErrItemNotFound if item doesn't exist
	GetItem(ctx context.Context, id string) (*models.QueueItem, error)

	// RemoveFromSyncQueue deletes an item; removing a missing ID is not an error
	RemoveFromSyncQueue(ctx context.Context, id string) error

	// GetSyncQueueStats returns aggregate counters for UI display
	GetSyncQueueStats(ctx context.Context) (*models.QueueStats, error)

	// ClaimItem atomically sets the in-flight marker for owner.
	// Returns false if the item is gone or already holds a live lease,
	// whoever the owner is.
	ClaimItem(ctx context.Context, id, owner string, ttl time.Duration) (bool, error)

	// ReleaseItem clears the in-flight marker if it is held by owner
	ReleaseItem(ctx context.Context, id, owner string) error

	// RecordFailure increments RetryCount, stores the error and releases the marker.
	// Returns the updated item.
	RecordFailure(ctx context.Context, id, owner, errMsg string) (*models.QueueItem, error)

	// MoveToDeadLetter removes the item from the queue and stores it as a dead letter
	MoveToDeadLetter(ctx context.Context, id, reason string) error

	// ListDeadLetters returns permanently failed items, oldest first
	ListDeadLetters(ctx context.Context) ([]*models.DeadLetter, error)

	// ClearDeadLetters deletes all dead letters and returns how many were removed
	ClearDeadLetters(ctx context.Context) (int, error)
}
