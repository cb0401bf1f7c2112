package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/tmasync/internal/models"
)

func (c *Cli) runSync(ctx context.Context, kind string, viaAgent bool) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	if viaAgent {
		resp, err := c.agent.TriggerSync(ctx, models.SyncTagFor(kind))
		if err != nil {
			return fmt.Errorf("background agent sync failed: %w", err)
		}
		c.printCounts(resp.Attempted, resp.Succeeded, resp.Retrying, resp.Skipped, resp.Permanent)
		return nil
	}

	if kind != "" {
		if !c.conn.IsOnline() {
			c.io.Println("✗ Device is offline")
			return nil
		}
		result, err := c.manager.ProcessSyncQueue(ctx, kind)
		if err != nil {
			return fmt.Errorf("synchronization failed: %w", err)
		}
		c.printCounts(result.Attempted, result.Succeeded, result.Retrying, result.Skipped, result.Permanent)
		return nil
	}

	res, err := c.manager.TriggerManualSync(ctx)
	if err != nil {
		return err
	}
	if !res.Success {
		c.io.Printf("✗ %s\n", res.Message)
		return nil
	}

	c.io.Printf("✓ %s\n", res.Message)
	c.printCounts(res.Result.Attempted, res.Result.Succeeded, res.Result.Retrying, res.Result.Skipped, res.Result.Permanent)
	return nil
}

func (c *Cli) printCounts(attempted, succeeded, retrying, skipped int, permanent []string) {
	c.io.Println()
	c.io.Printf("Attempted:         %d\n", attempted)
	c.io.Printf("Synced:            %d\n", succeeded)
	if retrying > 0 {
		c.io.Printf("Will retry:        %d\n", retrying)
	}
	if skipped > 0 {
		c.io.Printf("Handled elsewhere: %d\n", skipped)
	}
	if len(permanent) > 0 {
		c.io.Printf("Failed for good:   %d (see 'tmasync queue failed')\n", len(permanent))
	}
}
