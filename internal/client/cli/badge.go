package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runBadgeGet(ctx context.Context) error {
	c.io.Printf("%d\n", c.badge.GetBadgeCount(ctx))
	return nil
}

func (c *Cli) runBadgeSet(ctx context.Context, count int64) error {
	if count < 0 {
		return fmt.Errorf("badge count must not be negative")
	}
	c.badge.SetBadgeCount(ctx, count)
	c.io.Printf("✓ Badge set to %d\n", c.badge.GetBadgeCount(ctx))
	return nil
}

func (c *Cli) runBadgeClear(ctx context.Context) error {
	c.badge.ClearBadge(ctx)
	c.io.Println("✓ Badge cleared")
	return nil
}

func (c *Cli) runBadgeInit(ctx context.Context) error {
	if !c.badge.IsBadgeSupported() {
		c.io.Println("Badge display is not supported here, the count is still kept.")
	}
	c.badge.InitializeBadge(ctx)
	c.io.Printf("Badge: %d\n", c.badge.GetBadgeCount(ctx))
	return nil
}
