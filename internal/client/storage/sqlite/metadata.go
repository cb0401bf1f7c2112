package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/iudanet/tmasync/internal/crypto"
)

const (
	keyLastSyncTimestamp = "last_sync_timestamp"
	keySealSalt          = "seal_salt"
)

// SaveLastSyncTimestamp saves the timestamp of the last drain pass that removed items
func (s *Storage) SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, uint64(timestamp))

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`,
		keyLastSyncTimestamp, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save last sync timestamp: %w", err)
	}

	return nil
}

// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
// Returns 0 if no sync has been performed yet
func (s *Storage) GetLastSyncTimestamp(ctx context.Context) (int64, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, keyLastSyncTimestamp).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get last sync timestamp: %w", err)
	}

	if len(value) != 8 {
		return 0, fmt.Errorf("invalid last sync timestamp length %d", len(value))
	}

	return int64(binary.BigEndian.Uint64(value)), nil
}

// GetOrCreateSealSalt returns the payload sealing salt, creating it on first use
func (s *Storage) GetOrCreateSealSalt(ctx context.Context) ([]byte, error) {
	generated, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}

	// Если соль уже есть (в том числе создана другим процессом), вставка игнорируется
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO metadata (key, value) VALUES (?, ?)`,
		keySealSalt, generated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save seal salt: %w", err)
	}

	var salt []byte
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, keySealSalt).Scan(&salt); err != nil {
		return nil, fmt.Errorf("failed to get seal salt: %w", err)
	}

	return salt, nil
}
