package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tmasync/internal/client/storage"
)

// removeLeaseTTL срок метки, которой remove закрывает запись от фоновой отправки
const removeLeaseTTL = 30 * time.Second

func (c *Cli) runQueueList(ctx context.Context, kind string) error {
	items, err := c.store.GetPendingItems(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	if len(items) == 0 {
		c.io.Println("✓ Queue is empty")
		return nil
	}

	c.io.Printf("%d action(s) waiting to sync:\n\n", len(items))
	for _, item := range items {
		c.io.Printf("  %s  %-18s %-6s %-28s retries: %d/%d\n",
			item.ID, item.Kind, item.HTTPMethod(), item.Endpoint, item.RetryCount, item.MaxRetries)
		if item.LastError != "" {
			c.io.Printf("      last error: %s\n", item.LastError)
		}
	}

	return nil
}

func (c *Cli) runQueueShow(ctx context.Context, id string) error {
	item, err := c.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return fmt.Errorf("action %s is not in the queue", id)
		}
		return fmt.Errorf("failed to get action: %w", err)
	}

	return itemTmpl.Execute(c.io, item)
}

func (c *Cli) runQueueFailed(ctx context.Context) error {
	letters, err := c.store.ListDeadLetters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list failed actions: %w", err)
	}

	if len(letters) == 0 {
		c.io.Println("✓ No failed actions")
		return nil
	}

	c.io.Printf("%d action(s) could not be synced:\n\n", len(letters))
	for _, letter := range letters {
		c.io.Printf("  %s  %-18s %s %s\n", letter.Item.ID, letter.Item.Kind, letter.Item.HTTPMethod(), letter.Item.Endpoint)
		c.io.Printf("      failed at %s: %s\n", letter.FailedAt.Format(time.RFC3339), letter.Reason)
	}
	c.io.Println()
	c.io.Println("Run 'tmasync queue purge-failed' to delete them.")

	return nil
}

// runQueueRemove удаляет действие без отправки; бейдж уменьшается,
// так как действие больше не ожидает синхронизации
func (c *Cli) runQueueRemove(ctx context.Context, id string) error {
	if _, err := c.store.GetItem(ctx, id); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return fmt.Errorf("action %s is not in the queue", id)
		}
		return fmt.Errorf("failed to get action: %w", err)
	}

	// Запись под меткой уже отправляется; ее удаление и уменьшение счетчика сделает проход
	owner := "cli-remove-" + uuid.NewString()
	claimed, err := c.store.ClaimItem(ctx, id, owner, removeLeaseTTL)
	if err != nil {
		return fmt.Errorf("failed to lock action: %w", err)
	}
	if !claimed {
		return fmt.Errorf("action %s is being synced right now, try again later", id)
	}

	if err := c.store.RemoveFromSyncQueue(ctx, id); err != nil {
		_ = c.store.ReleaseItem(ctx, id, owner)
		return fmt.Errorf("failed to remove action: %w", err)
	}
	c.badge.DecrementBadge(ctx)

	c.io.Printf("✓ Action %s removed from the queue\n", id)
	return nil
}

func (c *Cli) runQueuePurgeFailed(ctx context.Context) error {
	removed, err := c.store.ClearDeadLetters(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge failed actions: %w", err)
	}

	c.io.Printf("✓ Deleted %d failed action(s)\n", removed)
	return nil
}
