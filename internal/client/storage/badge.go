package storage

import "context"

//go:generate moq -out badge_mock.go . BadgeStorage

// BadgeStorage defines the persisted badge counter.
// Two independent writers (client bridge and background agent) share it,
// so every change is a delta applied inside one storage transaction.
type BadgeStorage interface {
	// GetBadgeCount returns the persisted count, 0 if never set
	GetBadgeCount(ctx context.Context) (int64, error)

	// SetBadgeCount stores an absolute value, clamped to >= 0
	SetBadgeCount(ctx context.Context, count int64) error

	// AddBadgeCount applies delta atomically, clamps the result at 0
	// and returns the new value
	AddBadgeCount(ctx context.Context, delta int64) (int64, error)
}
