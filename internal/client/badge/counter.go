// Package badge keeps the persisted pending/unread count and mirrors it
// to the host badge display.
package badge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/drain"
)

var _ drain.Badge = (*Counter)(nil)

// Counter is the badge counter shared by the CLI client and the agent.
// Errors are logged and never returned: the badge must not break the
// operation it decorates.
type Counter struct {
	store    storage.BadgeStorage
	notifier Notifier
	logger   *slog.Logger
}

// NewCounter creates a Counter. A nil notifier means NopNotifier.
func NewCounter(store storage.BadgeStorage, notifier Notifier, logger *slog.Logger) *Counter {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Counter{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// IsBadgeSupported reports whether the host can display a badge.
// The count is persisted either way.
func (c *Counter) IsBadgeSupported() bool {
	return c.notifier.Supported()
}

// GetBadgeCount returns the persisted count, 0 on storage errors
func (c *Counter) GetBadgeCount(ctx context.Context) int64 {
	count, err := c.store.GetBadgeCount(ctx)
	if err != nil {
		c.logger.Error("Failed to get badge count", "error", err)
		return 0
	}
	return count
}

// SetBadgeCount stores an absolute value, negative values become 0
func (c *Counter) SetBadgeCount(ctx context.Context, count int64) {
	count = max(count, 0)

	if err := c.store.SetBadgeCount(ctx, count); err != nil {
		c.logger.Error("Failed to set badge count", "count", count, "error", err)
		return
	}

	c.display(count)
}

// ClearBadge resets the count and removes the badge
func (c *Counter) ClearBadge(ctx context.Context) {
	c.SetBadgeCount(ctx, 0)
}

// AddBadge applies delta atomically in the store and returns the new count.
// On storage errors it returns the last persisted value.
func (c *Counter) AddBadge(ctx context.Context, delta int64) int64 {
	count, err := c.store.AddBadgeCount(ctx, delta)
	if err != nil {
		c.logger.Error("Failed to update badge count", "delta", delta, "error", err)
		return c.GetBadgeCount(ctx)
	}

	c.display(count)
	return count
}

// IncrementBadge adds 1
func (c *Counter) IncrementBadge(ctx context.Context) int64 {
	return c.AddBadge(ctx, 1)
}

// DecrementBadge subtracts 1, never going below 0
func (c *Counter) DecrementBadge(ctx context.Context) int64 {
	return c.AddBadge(ctx, -1)
}

// OnNotificationReceived counts a new notification
func (c *Counter) OnNotificationReceived(ctx context.Context) int64 {
	return c.IncrementBadge(ctx)
}

// OnNotificationRead marks one notification as read
func (c *Counter) OnNotificationRead(ctx context.Context) int64 {
	return c.DecrementBadge(ctx)
}

// InitializeBadge restores the host badge from the persisted count.
// Called once at startup.
func (c *Counter) InitializeBadge(ctx context.Context) {
	if !c.IsBadgeSupported() {
		c.logger.Debug("Badge display is not supported")
		return
	}

	count := c.GetBadgeCount(ctx)
	if count > 0 {
		c.display(count)
		c.logger.Debug("Badge initialized", "count", count)
	}
}

// Refresh redisplays the persisted count, for example after another
// process changed it
func (c *Counter) Refresh(ctx context.Context) int64 {
	count := c.GetBadgeCount(ctx)
	c.display(count)
	return count
}

// SetupBadgeAutoClearing clears the badge every time one of triggers fires,
// until ctx is done or stop is called. A closed trigger stops being watched.
func (c *Counter) SetupBadgeAutoClearing(ctx context.Context, triggers ...<-chan struct{}) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup

	for _, trigger := range triggers {
		trigger := trigger
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-done:
					return
				case _, ok := <-trigger:
					if !ok {
						return
					}
					c.ClearBadge(ctx)
				}
			}
		}()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// display обновляет бейдж хоста; 0 убирает бейдж
func (c *Counter) display(count int64) {
	if !c.notifier.Supported() {
		return
	}

	var err error
	if count == 0 {
		err = c.notifier.Clear()
	} else {
		err = c.notifier.Set(count)
	}
	if err != nil {
		c.logger.Warn("Failed to update badge display", "count", count, "error", err)
	}
}
