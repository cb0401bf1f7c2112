package cli

import (
	"bufio"
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/tmasync/internal/client/bridge"
	"github.com/iudanet/tmasync/internal/client/offline"
)

// runWatch держит клиент запущенным: следит за сетью, досылает очередь при
// восстановлении связи и получает сообщения агента. focus сигнализирует,
// что пользователь посмотрел на экран (бейдж сбрасывается).
func (c *Cli) runWatch(ctx context.Context, focus <-chan struct{}) error {
	c.io.Println("Watching for connectivity and agent messages, press Ctrl+C to stop.")

	c.badge.InitializeBadge(ctx)

	g, gctx := errgroup.WithContext(ctx)

	stopIndicators := offline.SetupOfflineIndicators(c.conn, offline.NewTerminalIndicator(c.io))
	defer stopIndicators()

	stopAutoSync := c.manager.SetupAutoSync(gctx)
	defer stopAutoSync()

	var triggers []<-chan struct{}
	if focus != nil {
		triggers = append(triggers, focus)
	}
	stopClearing := c.badge.SetupBadgeAutoClearing(gctx, triggers...)
	defer stopClearing()

	b := bridge.New(c.messagesURL, c.logger)
	unwire := bridge.Wire(b, c.store, bridge.NewTerminalPendingIndicator(c.io), c.badge, c.logger)
	defer unwire()

	g.Go(func() error {
		return b.Listen(gctx)
	})

	if c.monitor != nil {
		g.Go(func() error {
			return c.monitor.Run(gctx)
		})
	}

	return g.Wait()
}

// lineSignals превращает каждую введенную строку в сигнал; канал закрывается на EOF
func lineSignals(r io.Reader) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch
}
