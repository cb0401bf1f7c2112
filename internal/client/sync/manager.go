package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/tmasync/internal/client/api"
	"github.com/iudanet/tmasync/internal/client/connectivity"
	"github.com/iudanet/tmasync/internal/drain"
	"github.com/iudanet/tmasync/internal/models"
)

// MessageOffline результат ручной синхронизации без сети
const MessageOffline = "Device is offline"

//go:generate moq -out manager_mock.go . Manager

// Manager определяет интерфейс менеджера очереди синхронизации
type Manager interface {
	// IsBackgroundSyncSupported сообщает, доступен ли фоновый агент
	IsBackgroundSyncSupported(ctx context.Context) bool

	// ProcessSyncQueue выполняет один проход по очереди; пустой kind - все типы
	ProcessSyncQueue(ctx context.Context, kind string) (*drain.Result, error)

	// TriggerManualSync немедленно обрабатывает всю очередь
	TriggerManualSync(ctx context.Context) (*ManualSyncResult, error)

	// SetupAutoSync запускает обработку очереди при восстановлении сети
	SetupAutoSync(ctx context.Context) (stop func())

	// RegisterBackgroundSync регистрирует тег "sync-<kind>" у фонового агента
	RegisterBackgroundSync(ctx context.Context, kind string)
}

// ManualSyncResult contains the outcome of TriggerManualSync
type ManualSyncResult struct {
	Result  *drain.Result
	Message string
	Success bool
}

// manager drains the queue in the CLI process
type manager struct {
	drainer *drain.Drainer
	conn    connectivity.Watcher
	agent   api.AgentAPI
	logger  *slog.Logger
	group   singleflight.Group
}

// NewManager creates a sync manager. agent may be nil when no background agent is configured.
func NewManager(drainer *drain.Drainer, conn connectivity.Watcher, agent api.AgentAPI, logger *slog.Logger) Manager {
	return &manager{
		drainer: drainer,
		conn:    conn,
		agent:   agent,
		logger:  logger,
	}
}

// IsBackgroundSyncSupported returns true when the agent is configured and answers health checks
func (m *manager) IsBackgroundSyncSupported(ctx context.Context) bool {
	if m.agent == nil {
		return false
	}

	health, err := m.agent.Health(ctx)
	if err != nil {
		m.logger.Debug("Background agent is not available", "error", err)
		return false
	}

	return health.Status == "ok"
}

// ProcessSyncQueue runs one drain pass over the queue
func (m *manager) ProcessSyncQueue(ctx context.Context, kind string) (*drain.Result, error) {
	return m.drainer.Drain(ctx, kind)
}

// TriggerManualSync drains the whole queue immediately.
// Concurrent calls share one drain pass.
func (m *manager) TriggerManualSync(ctx context.Context) (*ManualSyncResult, error) {
	m.logger.Info("Triggering manual sync")

	if !m.conn.IsOnline() {
		m.logger.Info("Cannot sync: offline")
		return &ManualSyncResult{Success: false, Message: MessageOffline}, nil
	}

	v, err, shared := m.group.Do("manual", func() (any, error) {
		return m.drainer.Drain(ctx, "")
	})
	if shared {
		m.logger.Debug("Joined running manual sync")
	}

	if err != nil {
		m.logger.Error("Manual sync failed", "error", err)
		result, _ := v.(*drain.Result)
		return &ManualSyncResult{Success: false, Result: result, Message: err.Error()}, fmt.Errorf("manual sync failed: %w", err)
	}

	result := v.(*drain.Result)
	return &ManualSyncResult{
		Success: true,
		Result:  result,
		Message: fmt.Sprintf("Synced %d of %d items", result.Succeeded, result.Attempted),
	}, nil
}

// SetupAutoSync drains the queue every time connectivity comes back and
// registers the whole-queue tag with the background agent.
// stop unsubscribes and waits for a running drain pass.
func (m *manager) SetupAutoSync(ctx context.Context) (stop func()) {
	wake := make(chan struct{}, 1)
	done := make(chan struct{})

	unsubscribe := m.conn.Subscribe(func(online bool) {
		if !online {
			return
		}
		// Не блокируем монитор сети; повторные сигналы схлопываются
		select {
		case wake <- struct{}{}:
		default:
		}
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-wake:
				m.logger.Info("Connection restored, triggering auto-sync")
				if _, err := m.TriggerManualSync(ctx); err != nil {
					m.logger.Warn("Auto-sync failed", "error", err)
				}
			}
		}
	}()

	m.RegisterBackgroundSync(ctx, "")
	m.logger.Debug("Auto-sync enabled")

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(done)
			wg.Wait()
		})
	}
}

// RegisterBackgroundSync registers "sync-<kind>" with the agent ("sync-all" for empty kind).
// Failures are logged only.
func (m *manager) RegisterBackgroundSync(ctx context.Context, kind string) {
	tag := models.SyncTagFor(kind)

	if m.agent == nil {
		m.logger.Debug("Background sync not supported", "tag", tag)
		return
	}

	if _, err := m.agent.RegisterSync(ctx, tag); err != nil {
		m.logger.Warn("Background sync registration failed", "tag", tag, "error", err)
		return
	}

	m.logger.Debug("Background sync registered", "tag", tag)
}
