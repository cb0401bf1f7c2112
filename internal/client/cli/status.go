package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/tmasync/internal/models"
	"github.com/iudanet/tmasync/pkg/api"
)

// statusView данные шаблона status
type statusView struct {
	Stats          *models.QueueStats
	Agent          *api.HealthResponse
	Badge          int64
	LastSync       int64
	Online         bool
	BadgeSupported bool
}

func (c *Cli) runStatus(ctx context.Context) error {
	stats, err := c.store.GetSyncQueueStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get queue stats: %w", err)
	}

	lastSync, err := c.store.GetLastSyncTimestamp(ctx)
	if err != nil {
		// Не прерываем выполнение, время последней синхронизации не критично
		c.logger.Warn("Failed to get last sync timestamp", "error", err)
	}

	view := statusView{
		Stats:          stats,
		Badge:          c.badge.GetBadgeCount(ctx),
		LastSync:       lastSync,
		Online:         c.conn.IsOnline(),
		BadgeSupported: c.badge.IsBadgeSupported(),
	}

	if health, err := c.agent.Health(ctx); err == nil {
		view.Agent = health
	} else {
		c.logger.Debug("Background agent is not available", "error", err)
	}

	if err := statusTmpl.Execute(c.io, view); err != nil {
		return fmt.Errorf("failed to render status: %w", err)
	}

	switch {
	case stats.Pending > 0 && view.Online:
		c.io.Println()
		c.io.Println("Run 'tmasync sync' to send pending actions now.")
	case stats.Failed > 0:
		c.io.Println()
		c.io.Println("Run 'tmasync queue failed' to review actions that could not be synced.")
	}

	return nil
}
