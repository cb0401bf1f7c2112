package storage

import "errors"

// Common client storage errors
var (
	// ErrItemNotFound indicates that queue item was not found
	ErrItemNotFound = errors.New("queue item not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrStorageUnavailable indicates that the pending action could not be persisted
	ErrStorageUnavailable = errors.New("storage unavailable")
)
