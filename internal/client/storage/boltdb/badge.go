package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tmasync/internal/client/storage"
)

const keyBadgeCount = "badge_count"

// GetBadgeCount returns the persisted badge count, 0 if never set
func (s *Storage) GetBadgeCount(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBadge)
		if bucket == nil {
			return fmt.Errorf("badge bucket not found")
		}

		count = readCount(bucket)
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get badge count: %w", err)
	}

	return count, nil
}

// SetBadgeCount stores an absolute value, negative values become 0
func (s *Storage) SetBadgeCount(ctx context.Context, count int64) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBadge)
		if bucket == nil {
			return fmt.Errorf("badge bucket not found")
		}

		return writeCount(bucket, max(count, 0))
	})

	if err != nil {
		return fmt.Errorf("failed to set badge count: %w", err)
	}

	return nil
}

// AddBadgeCount applies delta in one transaction and returns the new value
func (s *Storage) AddBadgeCount(ctx context.Context, delta int64) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBadge)
		if bucket == nil {
			return fmt.Errorf("badge bucket not found")
		}

		// Счетчик не уходит ниже нуля
		count = max(readCount(bucket)+delta, 0)
		return writeCount(bucket, count)
	})

	if err != nil {
		return 0, fmt.Errorf("failed to update badge count: %w", err)
	}

	return count, nil
}

func readCount(bucket *bbolt.Bucket) int64 {
	data := bucket.Get([]byte(keyBadgeCount))
	if len(data) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(data))
}

func writeCount(bucket *bbolt.Bucket, count int64) error {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, uint64(count))
	if err := bucket.Put([]byte(keyBadgeCount), data); err != nil {
		return fmt.Errorf("failed to save badge count: %w", err)
	}
	return nil
}
