package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/models"
)

const itemColumns = `seq, id, kind, endpoint, method, headers, payload, created_at,
	retry_count, max_retries, last_error, lease_owner, lease_until`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem читает строку sync_queue в QueueItem
func scanItem(row rowScanner) (*models.QueueItem, error) {
	var (
		item       models.QueueItem
		headers    string
		payload    []byte
		createdAt  int64
		leaseUntil int64
	)

	err := row.Scan(
		&item.Seq,
		&item.ID,
		&item.Kind,
		&item.Endpoint,
		&item.Method,
		&headers,
		&payload,
		&createdAt,
		&item.RetryCount,
		&item.MaxRetries,
		&item.LastError,
		&item.LeaseOwner,
		&leaseUntil,
	)
	if err != nil {
		return nil, err
	}

	if headers != "" {
		if err := json.Unmarshal([]byte(headers), &item.Headers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
		}
	}
	item.Payload = json.RawMessage(payload)
	item.CreatedAt = time.Unix(0, createdAt)
	if leaseUntil != 0 {
		item.LeaseUntil = time.Unix(0, leaseUntil)
	}

	return &item, nil
}

func collectItems(rows *sql.Rows) ([]*models.QueueItem, error) {
	defer func() {
		_ = rows.Close()
	}()

	items := []*models.QueueItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queue items: %w", err)
	}

	return items, nil
}

// AddToSyncQueue persists a new item and returns its ID
func (s *Storage) AddToSyncQueue(ctx context.Context, item *models.QueueItem) (string, error) {
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

	headers := ""
	if len(item.Headers) > 0 {
		data, err := json.Marshal(item.Headers)
		if err != nil {
			return "", fmt.Errorf("failed to marshal headers: %w", err)
		}
		headers = string(data)
	}

	query := `
		INSERT INTO sync_queue (id, kind, endpoint, method, headers, payload, created_at, max_retries)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING seq
	`

	err := s.db.QueryRowContext(ctx, query,
		item.ID,
		item.Kind,
		item.Endpoint,
		item.HTTPMethod(),
		headers,
		[]byte(item.Payload),
		item.CreatedAt.UnixNano(),
		item.MaxRetries,
	).Scan(&item.Seq)

	if err != nil {
		return "", fmt.Errorf("%w: failed to insert queue item: %w", storage.ErrStorageUnavailable, err)
	}

	return item.ID, nil
}

// GetPendingItems returns items still in the queue, oldest first
func (s *Storage) GetPendingItems(ctx context.Context, kind string) ([]*models.QueueItem, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if kind == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM sync_queue ORDER BY seq`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM sync_queue WHERE kind = ? ORDER BY seq`, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending items: %w", err)
	}

	return collectItems(rows)
}

// GetItem retrieves one item by ID
func (s *Storage) GetItem(ctx context.Context, id string) (*models.QueueItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM sync_queue WHERE id = ?`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get queue item: %w", err)
	}

	return item, nil
}

// RemoveFromSyncQueue deletes an item; idempotent
func (s *Storage) RemoveFromSyncQueue(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove queue item: %w", err)
	}
	return nil
}

// GetSyncQueueStats returns aggregate counters for UI display
func (s *Storage) GetSyncQueueStats(ctx context.Context) (*models.QueueStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN retry_count > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN lease_owner != '' AND lease_until > ? THEN 1 ELSE 0 END), 0),
			(SELECT COUNT(*) FROM dead_letters)
		FROM sync_queue
	`

	stats := &models.QueueStats{}
	err := s.db.QueryRowContext(ctx, query, time.Now().UnixNano()).Scan(
		&stats.Pending,
		&stats.Retrying,
		&stats.InFlight,
		&stats.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	stats.Total = stats.Pending + stats.Failed
	return stats, nil
}

// ClaimItem atomically sets the in-flight marker for owner
func (s *Storage) ClaimItem(ctx context.Context, id, owner string, ttl time.Duration) (bool, error) {
	now := time.Now()

	// Одна команда UPDATE атомарна и между процессами
	query := `
		UPDATE sync_queue
		SET lease_owner = ?, lease_until = ?
		WHERE id = ? AND (lease_owner = '' OR lease_until <= ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		owner,
		now.Add(ttl).UnixNano(),
		id,
		now.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim queue item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

// ReleaseItem clears the in-flight marker if it is held by owner
func (s *Storage) ReleaseItem(ctx context.Context, id, owner string) error {
	query := `UPDATE sync_queue SET lease_owner = '', lease_until = 0 WHERE id = ? AND lease_owner = ?`

	if _, err := s.db.ExecContext(ctx, query, id, owner); err != nil {
		return fmt.Errorf("failed to release queue item: %w", err)
	}

	return nil
}

// RecordFailure increments RetryCount, stores the error and releases the marker
func (s *Storage) RecordFailure(ctx context.Context, id, owner, errMsg string) (*models.QueueItem, error) {
	// В SET все выражения видят старые значения столбцов
	query := `
		UPDATE sync_queue
		SET retry_count = retry_count + 1,
			last_error = ?,
			lease_owner = CASE WHEN lease_owner = ? THEN '' ELSE lease_owner END,
			lease_until = CASE WHEN lease_owner = ? THEN 0 ELSE lease_until END
		WHERE id = ?
		RETURNING ` + itemColumns

	item, err := scanItem(s.db.QueryRowContext(ctx, query, errMsg, owner, owner, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to record failure: %w", err)
	}

	return item, nil
}

// MoveToDeadLetter removes the item from the queue and stores it as a dead letter
func (s *Storage) MoveToDeadLetter(ctx context.Context, id, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM sync_queue WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrItemNotFound
		}
		return fmt.Errorf("failed to get queue item: %w", err)
	}

	item.LeaseOwner = ""
	item.LeaseUntil = time.Time{}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO dead_letters (seq, item, reason, failed_at) VALUES (?, ?, ?, ?)`,
		item.Seq, string(data), reason, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save dead letter: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove queue item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListDeadLetters returns permanently failed items, oldest first
func (s *Storage) ListDeadLetters(ctx context.Context) ([]*models.DeadLetter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item, reason, failed_at FROM dead_letters ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dead letters: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	letters := []*models.DeadLetter{}
	for rows.Next() {
		var (
			data     string
			failedAt int64
			letter   models.DeadLetter
		)
		if err := rows.Scan(&data, &letter.Reason, &failedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dead letter: %w", err)
		}

		letter.Item = &models.QueueItem{}
		if err := json.Unmarshal([]byte(data), letter.Item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dead letter: %w", err)
		}
		letter.FailedAt = time.Unix(0, failedAt)

		letters = append(letters, &letter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dead letters: %w", err)
	}

	return letters, nil
}

// ClearDeadLetters deletes all dead letters
func (s *Storage) ClearDeadLetters(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM dead_letters`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear dead letters: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(affected), nil
}
