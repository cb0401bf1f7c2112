package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/iudanet/tmasync/internal/models"
)

// PendingIndicator shows how many actions are waiting to sync
type PendingIndicator interface {
	Update(stats *models.QueueStats)
}

// StatsSource provides queue statistics. The queue store implements it.
type StatsSource interface {
	GetSyncQueueStats(ctx context.Context) (*models.QueueStats, error)
}

// BadgeCounter is the part of badge.Counter the bridge needs
type BadgeCounter interface {
	IncrementBadge(ctx context.Context) int64
	DecrementBadge(ctx context.Context) int64
	Refresh(ctx context.Context) int64
}

// Wire registers the default handlers:
// SYNC_* refresh the pending indicator and the badge display,
// INCREMENT_BADGE / DECREMENT_BADGE change the badge count.
// The returned function removes all of them.
func Wire(b *Bridge, stats StatsSource, indicator PendingIndicator, counter BadgeCounter, logger *slog.Logger) (unsubscribe func()) {
	onSync := func(ctx context.Context, msg models.Message) {
		if msg.Type == models.MessageSyncFailed && msg.Permanent {
			logger.Error("Action permanently failed to sync", "item_id", msg.ItemID, "kind", msg.SyncType, "error", msg.Error)
		}

		s, err := stats.GetSyncQueueStats(ctx)
		if err != nil {
			logger.Warn("Failed to get queue stats", "error", err)
		} else {
			indicator.Update(s)
		}

		// Счетчик уже изменен агентом в общем хранилище
		counter.Refresh(ctx)
	}

	unsubs := []func(){
		b.On(models.MessageSyncSuccess, onSync),
		b.On(models.MessageSyncFailed, onSync),
		b.On(models.MessageIncrementBadge, func(ctx context.Context, msg models.Message) {
			counter.IncrementBadge(ctx)
		}),
		b.On(models.MessageDecrementBadge, func(ctx context.Context, msg models.Message) {
			counter.DecrementBadge(ctx)
		}),
	}

	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// TerminalPendingIndicator prints the number of pending actions
type TerminalPendingIndicator struct {
	out io.Writer
}

// NewTerminalPendingIndicator creates an indicator writing to out
func NewTerminalPendingIndicator(out io.Writer) *TerminalPendingIndicator {
	return &TerminalPendingIndicator{out: out}
}

// Update prints the current queue state
func (i *TerminalPendingIndicator) Update(stats *models.QueueStats) {
	switch {
	case stats.Pending > 0 && stats.Failed > 0:
		_, _ = fmt.Fprintf(i.out, "⏳ %d actions waiting to sync, %d failed\n", stats.Pending, stats.Failed)
	case stats.Pending > 0:
		_, _ = fmt.Fprintf(i.out, "⏳ %d actions waiting to sync\n", stats.Pending)
	case stats.Failed > 0:
		_, _ = fmt.Fprintf(i.out, "✗ %d actions failed to sync\n", stats.Failed)
	default:
		_, _ = fmt.Fprintln(i.out, "✓ All actions synced")
	}
}
