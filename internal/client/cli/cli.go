// Package cli implements the tmasync command line client.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/iudanet/tmasync/internal/client/api"
	"github.com/iudanet/tmasync/internal/client/badge"
	"github.com/iudanet/tmasync/internal/client/connectivity"
	"github.com/iudanet/tmasync/internal/client/iocli"
	"github.com/iudanet/tmasync/internal/client/offline"
	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/client/storage/opener"
	"github.com/iudanet/tmasync/internal/client/sync"
	"github.com/iudanet/tmasync/internal/config"
	"github.com/iudanet/tmasync/internal/drain"
)

// Cli holds the services used by commands
type Cli struct {
	io      iocli.IO
	logger  *slog.Logger
	store   storage.Store
	badge   *badge.Counter
	offline *offline.Service
	manager sync.Manager
	agent   api.AgentAPI
	conn    connectivity.Watcher
	// monitor nil, если связь не проверяется (тесты)
	monitor     *connectivity.Monitor
	messagesURL string
}

// Open builds the client services from cfg.
// The connectivity state is probed once before returning.
func Open(ctx context.Context, cfg *config.Config, io iocli.IO, logger *slog.Logger) (*Cli, error) {
	c := &Cli{io: io, logger: logger}

	store, err := opener.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.store = store

	notifier, err := badge.NewNotifier(cfg.Badge.Notifier, cfg.Badge.File, os.Stdout)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to create badge notifier: %w", err)
	}
	c.badge = badge.NewCounter(store, notifier, logger)

	backend := api.NewClient(cfg.Backend.URL, cfg.Backend.Token, cfg.Backend.RequestTimeout)

	c.monitor = connectivity.NewMonitor(backend, cfg.Connectivity.ProbeInterval, logger)
	c.monitor.Check(ctx)
	c.conn = c.monitor

	agentClient := api.NewAgentClient(cfg.Agent.URL)
	c.agent = agentClient
	c.messagesURL = agentClient.MessagesURL()

	drainer := drain.New(store, store, backend, c.badge, nil, drain.Config{
		Owner:          "cli-" + uuid.NewString(),
		RequestTimeout: cfg.Backend.RequestTimeout,
		LeaseGrace:     cfg.Queue.LeaseGrace,
	}, logger)

	c.manager = sync.NewManager(drainer, c.conn, c.agent, logger)
	c.offline = offline.NewService(backend, store, c.conn, c.badge, c.manager, offline.DefaultEndpoints(), cfg.Queue.MaxRetries, logger)

	return c, nil
}

// Close releases the store and the badge connection
func (c *Cli) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}
