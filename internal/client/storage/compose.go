package storage

import (
	"context"
	"errors"
	"io"
)

// withBadge направляет операции бейджа в отдельное хранилище
type withBadge struct {
	Store
	badge BadgeStorage
}

// WithBadge returns a Store that keeps the queue in store and the badge in badge.
// Close closes both when badge implements io.Closer.
func WithBadge(store Store, badge BadgeStorage) Store {
	return &withBadge{Store: store, badge: badge}
}

func (w *withBadge) GetBadgeCount(ctx context.Context) (int64, error) {
	return w.badge.GetBadgeCount(ctx)
}

func (w *withBadge) SetBadgeCount(ctx context.Context, count int64) error {
	return w.badge.SetBadgeCount(ctx, count)
}

func (w *withBadge) AddBadgeCount(ctx context.Context, delta int64) (int64, error) {
	return w.badge.AddBadgeCount(ctx, delta)
}

func (w *withBadge) Close() error {
	var errs []error
	if c, ok := w.badge.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, w.Store.Close())
	return errors.Join(errs...)
}
