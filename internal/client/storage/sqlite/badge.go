package sqlite

import (
	"context"
	"fmt"
)

// GetBadgeCount returns the persisted badge count, 0 if never set
func (s *Storage) GetBadgeCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT count FROM badge WHERE id = 1`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get badge count: %w", err)
	}
	return count, nil
}

// SetBadgeCount stores an absolute value, negative values become 0
func (s *Storage) SetBadgeCount(ctx context.Context, count int64) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE badge SET count = ? WHERE id = 1`, max(count, 0)); err != nil {
		return fmt.Errorf("failed to set badge count: %w", err)
	}
	return nil
}

// AddBadgeCount applies delta in a single statement and returns the new value
func (s *Storage) AddBadgeCount(ctx context.Context, delta int64) (int64, error) {
	var count int64

	query := `UPDATE badge SET count = MAX(count + ?, 0) WHERE id = 1 RETURNING count`
	if err := s.db.QueryRowContext(ctx, query, delta).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to update badge count: %w", err)
	}

	return count, nil
}
