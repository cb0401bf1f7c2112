package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/tmasync/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketQueue      = []byte("sync-queue")
	bucketQueueByID  = []byte("sync-queue-id")
	bucketQueueKind  = []byte("sync-queue-kind")
	bucketDeadLetter = []byte("dead-letter")
	bucketBadge      = []byte("badge")
	bucketMetadata   = []byte("metadata")
)

// openTimeout ограничивает ожидание файловой блокировки,
// если базу уже держит другой процесс (например, агент)
const openTimeout = 2 * time.Second

var _ storage.Store = (*Storage)(nil)

// Storage represents BoltDB storage implementation for client.
// The file lock is exclusive: only one process can use it at a time.
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
// Повторный вызов ничего не делает
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{
			bucketQueue,
			bucketQueueByID,
			bucketQueueKind,
			bucketDeadLetter,
			bucketBadge,
			bucketMetadata,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}

		return nil
	})
}
