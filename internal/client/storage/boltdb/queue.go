package boltdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/models"
)

// seqKey кодирует порядковый номер в big-endian, чтобы курсор bbolt
// обходил записи в порядке вставки
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// kindPrefix префикс ключа во вторичном индексе по типу операции
func kindPrefix(kind string) []byte {
	return append([]byte(kind), 0)
}

func kindKey(kind string, seq uint64) []byte {
	return append(kindPrefix(kind), seqKey(seq)...)
}

// AddToSyncQueue persists a new item and returns its ID
func (s *Storage) AddToSyncQueue(ctx context.Context, item *models.QueueItem) (string, error) {
	if s.db == nil {
		return "", storage.ErrStorageClosed
	}

	if item.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("failed to generate item id: %w", err)
		}
		item.ID = id.String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.RetryCount = 0
	item.LeaseOwner = ""
	item.LeaseUntil = time.Time{}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		queue, byID, byKind, err := queueBuckets(tx)
		if err != nil {
			return err
		}

		if byID.Get([]byte(item.ID)) != nil {
			return fmt.Errorf("item %s is already queued", item.ID)
		}

		seq, err := queue.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}
		item.Seq = seq

		// Сериализуем item в JSON
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal queue item: %w", err)
		}

		key := seqKey(seq)
		if err := queue.Put(key, data); err != nil {
			return fmt.Errorf("failed to save item: %w", err)
		}
		if err := byID.Put([]byte(item.ID), key); err != nil {
			return fmt.Errorf("failed to index item id: %w", err)
		}
		if err := byKind.Put(kindKey(item.Kind, seq), []byte{}); err != nil {
			return fmt.Errorf("failed to index item kind: %w", err)
		}

		return nil
	})

	if err != nil {
		return "", fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
	}

	return item.ID, nil
}

// GetPendingItems returns items still in the queue, oldest first
func (s *Storage) GetPendingItems(ctx context.Context, kind string) ([]*models.QueueItem, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	items := []*models.QueueItem{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		queue, _, byKind, err := queueBuckets(tx)
		if err != nil {
			return err
		}

		if kind == "" {
			return queue.ForEach(func(k, v []byte) error {
				item, err := decodeItem(v)
				if err != nil {
					return err
				}
				items = append(items, item)
				return nil
			})
		}

		// Используем вторичный индекс по типу
		prefix := kindPrefix(kind)
		c := byKind.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			data := queue.Get(k[len(prefix):])
			if data == nil {
				continue
			}
			item, err := decodeItem(data)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get pending items: %w", err)
	}

	return items, nil
}

// GetItem retrieves one item by ID
func (s *Storage) GetItem(ctx context.Context, id string) (*models.QueueItem, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var item *models.QueueItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		item, _, err = getItemTx(tx, id)
		return err
	})

	if err != nil {
		return nil, err
	}

	return item, nil
}

// RemoveFromSyncQueue deletes an item; idempotent
func (s *Storage) RemoveFromSyncQueue(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		item, _, err := getItemTx(tx, id)
		if err == storage.ErrItemNotFound {
			// Уже удалена - это не ошибка
			return nil
		}
		if err != nil {
			return err
		}

		return deleteItemTx(tx, item)
	})

	if err != nil {
		return fmt.Errorf("remove transaction failed: %w", err)
	}

	return nil
}

// GetSyncQueueStats returns aggregate counters for UI display
func (s *Storage) GetSyncQueueStats(ctx context.Context) (*models.QueueStats, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	stats := &models.QueueStats{}
	now := time.Now()

	err := s.db.View(func(tx *bbolt.Tx) error {
		queue, _, _, err := queueBuckets(tx)
		if err != nil {
			return err
		}

		err = queue.ForEach(func(k, v []byte) error {
			item, err := decodeItem(v)
			if err != nil {
				return err
			}

			stats.Pending++
			if item.RetryCount > 0 {
				stats.Retrying++
			}
			if item.LeaseOwner != "" && now.Before(item.LeaseUntil) {
				stats.InFlight++
			}
			return nil
		})
		if err != nil {
			return err
		}

		dead := tx.Bucket(bucketDeadLetter)
		if dead != nil {
			stats.Failed = dead.Stats().KeyN
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	stats.Total = stats.Pending + stats.Failed
	return stats, nil
}

// ClaimItem atomically sets the in-flight marker for owner
func (s *Storage) ClaimItem(ctx context.Context, id, owner string, ttl time.Duration) (bool, error) {
	if s.db == nil {
		return false, storage.ErrStorageClosed
	}

	claimed := false

	err := s.db.Update(func(tx *bbolt.Tx) error {
		item, key, err := getItemTx(tx, id)
		if err == storage.ErrItemNotFound {
			// Запись уже обработана другим проходом
			return nil
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if item.Leased(now) {
			return nil
		}

		item.LeaseOwner = owner
		item.LeaseUntil = now.Add(ttl)
		if err := putItemTx(tx, key, item); err != nil {
			return err
		}

		claimed = true
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("claim transaction failed: %w", err)
	}

	return claimed, nil
}

// ReleaseItem clears the in-flight marker if it is held by owner
func (s *Storage) ReleaseItem(ctx context.Context, id, owner string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		item, key, err := getItemTx(tx, id)
		if err == storage.ErrItemNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		if item.LeaseOwner != owner {
			return nil
		}

		item.LeaseOwner = ""
		item.LeaseUntil = time.Time{}
		return putItemTx(tx, key, item)
	})

	if err != nil {
		return fmt.Errorf("release transaction failed: %w", err)
	}

	return nil
}

// RecordFailure increments RetryCount, stores the error and releases the marker
func (s *Storage) RecordFailure(ctx context.Context, id, owner, errMsg string) (*models.QueueItem, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var updated *models.QueueItem

	err := s.db.Update(func(tx *bbolt.Tx) error {
		item, key, err := getItemTx(tx, id)
		if err != nil {
			return err
		}

		item.RetryCount++
		item.LastError = errMsg
		if item.LeaseOwner == owner {
			item.LeaseOwner = ""
			item.LeaseUntil = time.Time{}
		}

		if err := putItemTx(tx, key, item); err != nil {
			return err
		}

		updated = item
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("record failure transaction failed: %w", err)
	}

	return updated, nil
}

// MoveToDeadLetter removes the item from the queue and stores it as a dead letter
func (s *Storage) MoveToDeadLetter(ctx context.Context, id, reason string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		item, _, err := getItemTx(tx, id)
		if err != nil {
			return err
		}

		dead := tx.Bucket(bucketDeadLetter)
		if dead == nil {
			return fmt.Errorf("dead-letter bucket not found")
		}

		item.LeaseOwner = ""
		item.LeaseUntil = time.Time{}

		data, err := json.Marshal(&models.DeadLetter{
			Item:     item,
			Reason:   reason,
			FailedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal dead letter: %w", err)
		}

		if err := dead.Put(seqKey(item.Seq), data); err != nil {
			return fmt.Errorf("failed to save dead letter: %w", err)
		}

		return deleteItemTx(tx, item)
	})

	if err != nil {
		return fmt.Errorf("dead-letter transaction failed: %w", err)
	}

	return nil
}

// ListDeadLetters returns permanently failed items, oldest first
func (s *Storage) ListDeadLetters(ctx context.Context) ([]*models.DeadLetter, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	letters := []*models.DeadLetter{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		dead := tx.Bucket(bucketDeadLetter)
		if dead == nil {
			return nil
		}

		return dead.ForEach(func(k, v []byte) error {
			var letter models.DeadLetter
			if err := json.Unmarshal(v, &letter); err != nil {
				return fmt.Errorf("failed to unmarshal dead letter: %w", err)
			}
			letters = append(letters, &letter)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list dead letters: %w", err)
	}

	return letters, nil
}

// ClearDeadLetters deletes all dead letters
func (s *Storage) ClearDeadLetters(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	removed := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if dead := tx.Bucket(bucketDeadLetter); dead != nil {
			removed = dead.Stats().KeyN
		}

		// Удаляем bucket полностью и создаем заново пустой
		if err := tx.DeleteBucket(bucketDeadLetter); err != nil && err != bbolt.ErrBucketNotFound {
			return fmt.Errorf("failed to delete bucket: %w", err)
		}
		if _, err := tx.CreateBucket(bucketDeadLetter); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("clear transaction failed: %w", err)
	}

	return removed, nil
}

func queueBuckets(tx *bbolt.Tx) (queue, byID, byKind *bbolt.Bucket, err error) {
	queue = tx.Bucket(bucketQueue)
	byID = tx.Bucket(bucketQueueByID)
	byKind = tx.Bucket(bucketQueueKind)
	if queue == nil || byID == nil || byKind == nil {
		return nil, nil, nil, fmt.Errorf("sync-queue bucket not found")
	}
	return queue, byID, byKind, nil
}

func decodeItem(data []byte) (*models.QueueItem, error) {
	item := &models.QueueItem{}
	if err := json.Unmarshal(data, item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue item: %w", err)
	}
	return item, nil
}

// getItemTx находит запись по ID через индекс и возвращает ее вместе с ключом очереди
func getItemTx(tx *bbolt.Tx, id string) (*models.QueueItem, []byte, error) {
	queue, byID, _, err := queueBuckets(tx)
	if err != nil {
		return nil, nil, err
	}

	key := byID.Get([]byte(id))
	if key == nil {
		return nil, nil, storage.ErrItemNotFound
	}

	data := queue.Get(key)
	if data == nil {
		return nil, nil, storage.ErrItemNotFound
	}

	item, err := decodeItem(data)
	if err != nil {
		return nil, nil, err
	}

	// Ключи bbolt валидны только внутри транзакции
	return item, append([]byte(nil), key...), nil
}

func putItemTx(tx *bbolt.Tx, key []byte, item *models.QueueItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal queue item: %w", err)
	}
	if err := tx.Bucket(bucketQueue).Put(key, data); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

func deleteItemTx(tx *bbolt.Tx, item *models.QueueItem) error {
	queue, byID, byKind, err := queueBuckets(tx)
	if err != nil {
		return err
	}

	if err := queue.Delete(seqKey(item.Seq)); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if err := byID.Delete([]byte(item.ID)); err != nil {
		return fmt.Errorf("failed to delete id index: %w", err)
	}
	if err := byKind.Delete(kindKey(item.Kind, item.Seq)); err != nil {
		return fmt.Errorf("failed to delete kind index: %w", err)
	}

	return nil
}
