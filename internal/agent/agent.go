// Package agent implements the background replay agent: a long-running
// process that drains the durable queue when the backend is reachable and
// relays badge changes to running clients.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/tmasync/internal/agent/handlers"
	"github.com/iudanet/tmasync/internal/agent/hub"
	"github.com/iudanet/tmasync/internal/agent/middleware"
	"github.com/iudanet/tmasync/internal/client/badge"
	"github.com/iudanet/tmasync/internal/client/connectivity"
	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/drain"
	"github.com/iudanet/tmasync/internal/models"
	"github.com/iudanet/tmasync/pkg/api"
)

const (
	// DefaultSyncInterval период фонового прохода по зарегистрированным тегам
	DefaultSyncInterval = time.Minute
	// DefaultRateLimit запросов в минуту к push и click с одного адреса
	DefaultRateLimit = 60

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var _ handlers.Service = (*Agent)(nil)

// Config параметры агента
type Config struct {
	Version string
	// PushSecret ключ проверки токенов отправителей push; пустой отключает проверку
	PushSecret     []byte
	SyncInterval   time.Duration
	RequestTimeout time.Duration
	LeaseGrace     time.Duration
	RateLimit      int
}

// Agent background replay agent
type Agent struct {
	store   storage.Store
	drainer *drain.Drainer
	hub     *hub.Hub
	badge   *badge.Counter
	conn    connectivity.Watcher
	limiter *middleware.RateLimiter
	logger  *slog.Logger
	// tags тег -> поколение его последней регистрации
	tags    map[string]uint64
	wake    chan struct{}
	cfg     Config
	gen     uint64
	mu      sync.Mutex
}

// New creates an agent over the shared store.
// SYNC_* results of every drain pass are broadcast to connected clients.
func New(store storage.Store, sender drain.Sender, counter *badge.Counter, conn connectivity.Watcher, cfg Config, logger *slog.Logger) *Agent {
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	h := hub.New(logger)

	a := &Agent{
		store:   store,
		hub:     h,
		badge:   counter,
		conn:    conn,
		limiter: middleware.NewRateLimiter(cfg.RateLimit, time.Minute, logger),
		logger:  logger,
		tags:    make(map[string]uint64),
		wake:    make(chan struct{}, 1),
		cfg:     cfg,
	}

	// Клиент отключился, не получив изменение счетчика: применяем его сами
	h.OnUndelivered(func(msg models.Message) {
		ctx := context.Background()
		switch msg.Type {
		case models.MessageIncrementBadge:
			counter.OnNotificationReceived(ctx)
		case models.MessageDecrementBadge:
			counter.OnNotificationRead(ctx)
		}
	})

	notifier := drain.NotifierFunc(func(ctx context.Context, msg models.Message) {
		h.Broadcast(msg)
	})

	a.drainer = drain.New(store, store, sender, counter, notifier, drain.Config{
		Owner:          "agent-" + uuid.NewString(),
		RequestTimeout: cfg.RequestTimeout,
		LeaseGrace:     cfg.LeaseGrace,
	}, logger)

	return a
}

// HandleSyncEvent drains the items addressed by tag ("sync-<kind>" or "sync-all").
// Tags with nothing left to send are unregistered afterwards.
func (a *Agent) HandleSyncEvent(ctx context.Context, tag string) (*drain.Result, error) {
	kind, err := models.ValidateSyncTag(tag)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Handling sync event", "tag", tag)

	result, err := a.drainer.Drain(ctx, kind)
	if err != nil {
		return result, fmt.Errorf("drain %s: %w", tag, err)
	}

	a.pruneTags(ctx)
	return result, nil
}

// RegisterSync remembers tag for the replay loop and wakes it up.
// Returns all registered tags.
func (a *Agent) RegisterSync(ctx context.Context, tag string) ([]string, error) {
	if _, err := models.ValidateSyncTag(tag); err != nil {
		return nil, err
	}

	a.addTag(tag)
	a.logger.Debug("Background sync registered", "tag", tag)
	a.wakeUp()

	return a.registered(), nil
}

// HandlePush sends INCREMENT_BADGE to a running client.
// Without clients the persisted badge is incremented directly.
func (a *Agent) HandlePush(ctx context.Context, push api.PushRequest) api.BadgeDeliveryResponse {
	a.logger.Info("Push received", "title", push.Title, "tag", push.Tag)
	return a.deliverBadge(ctx, models.MessageIncrementBadge, a.badge.OnNotificationReceived)
}

// HandleNotificationClick sends DECREMENT_BADGE the same way as HandlePush
func (a *Agent) HandleNotificationClick(ctx context.Context, tag string) api.BadgeDeliveryResponse {
	a.logger.Info("Notification clicked", "tag", tag)
	return a.deliverBadge(ctx, models.MessageDecrementBadge, a.badge.OnNotificationRead)
}

// deliverBadge отдает изменение счетчика одному клиенту, иначе применяет его сам
func (a *Agent) deliverBadge(ctx context.Context, t models.MessageType, direct func(context.Context) int64) api.BadgeDeliveryResponse {
	if a.hub.SendToOne(models.Message{Type: t, Timestamp: time.Now()}) {
		return api.BadgeDeliveryResponse{Delivery: api.DeliveryClients, Clients: 1}
	}

	return api.BadgeDeliveryResponse{Delivery: api.DeliveryDirect, BadgeCount: direct(ctx)}
}

// Health reports the agent state
func (a *Agent) Health(ctx context.Context) api.HealthResponse {
	return api.HealthResponse{
		Status:     "ok",
		Version:    a.cfg.Version,
		Clients:    a.hub.Count(),
		Registered: len(a.registered()),
		Online:     a.conn.IsOnline(),
	}
}

// QueueStats returns queue counters together with the badge and last sync time
func (a *Agent) QueueStats(ctx context.Context) (*api.QueueStatsResponse, error) {
	stats, err := a.store.GetSyncQueueStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	lastSync, err := a.store.GetLastSyncTimestamp(ctx)
	if err != nil {
		a.logger.Warn("Failed to get last sync timestamp", "error", err)
	}

	return &api.QueueStatsResponse{
		Total:      stats.Total,
		Pending:    stats.Pending,
		Retrying:   stats.Retrying,
		InFlight:   stats.InFlight,
		Failed:     stats.Failed,
		BadgeCount: a.badge.GetBadgeCount(ctx),
		LastSyncAt: lastSync,
	}, nil
}

// Router returns the HTTP handler of the agent
func (a *Agent) Router() http.Handler {
	h := handlers.New(a, a.logger)

	r := chi.NewRouter()
	r.Use(middleware.RecoveryMiddleware(a.logger))
	r.Use(middleware.LoggingWithSkip(a.logger, []string{"/api/v1/health"}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/messages", a.hub.ServeWS)
		r.Get("/queue/stats", h.QueueStats)
		r.Post("/sync", h.Sync)
		r.Post("/sync/register", h.RegisterSync)

		// Внешние отправители уведомлений
		r.Group(func(r chi.Router) {
			r.Use(a.limiter.Middleware)
			r.Use(middleware.PushAuthMiddleware(a.logger, a.cfg.PushSecret))
			r.Post("/push", h.Push)
			r.Post("/notifications/{tag}/click", h.NotificationClick)
		})
	})

	return r
}

// Run serves HTTP on ln and runs the replay loop until ctx is done.
// extra runs in the same group (e.g. the connectivity monitor).
func (a *Agent) Run(ctx context.Context, ln net.Listener, extra ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g.Go(func() error {
		a.logger.Info("Agent listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("agent server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("agent shutdown failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.hub.Run(gctx)
	})

	g.Go(func() error {
		return a.limiter.Run(gctx)
	})

	g.Go(func() error {
		return a.replayLoop(gctx)
	})

	for _, fn := range extra {
		fn := fn
		g.Go(func() error {
			return fn(gctx)
		})
	}

	return g.Wait()
}

// replayLoop проходит по зарегистрированным тегам по таймеру, при регистрации
// нового тега и при восстановлении связи
func (a *Agent) replayLoop(ctx context.Context) error {
	unsubscribe := a.conn.Subscribe(func(online bool) {
		if online {
			a.wakeUp()
		}
	})
	defer unsubscribe()

	a.seed(ctx)
	a.wakeUp()

	ticker := time.NewTicker(a.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-a.wake:
		}

		if !a.conn.IsOnline() {
			a.logger.Debug("Backend unreachable, replay postponed")
			continue
		}

		// Работа выводится из очереди на каждом проходе
		a.seed(ctx)
		a.replayRegistered(ctx)
	}
}

// seed регистрирует sync-all, если в очереди есть записи к отправке.
// Цикл не будится: seed вызывается из самого цикла.
func (a *Agent) seed(ctx context.Context) {
	stats, err := a.store.GetSyncQueueStats(ctx)
	if err != nil {
		a.logger.Warn("Failed to read queue stats", "error", err)
		return
	}
	if stats.Pending == 0 {
		return
	}

	a.logger.Debug("Pending items found in queue", "pending", stats.Pending)
	a.addTag(models.SyncTagAll)
}

// addTag регистрирует тег с новым поколением
func (a *Agent) addTag(tag string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gen++
	a.tags[tag] = a.gen
}

func (a *Agent) replayRegistered(ctx context.Context) {
	tags := a.registered()
	// sync-all покрывает все остальные теги
	if slices.Contains(tags, models.SyncTagAll) {
		tags = []string{models.SyncTagAll}
	}

	for _, tag := range tags {
		if ctx.Err() != nil {
			return
		}
		if _, err := a.HandleSyncEvent(ctx, tag); err != nil {
			a.logger.Warn("Background sync failed", "tag", tag, "error", err)
		}
	}
}

// pruneTags снимает регистрацию тегов, для которых в очереди ничего не осталось.
// Тег, зарегистрированный заново после чтения очереди, остается.
func (a *Agent) pruneTags(ctx context.Context) {
	for tag, gen := range a.snapshot() {
		kind, err := models.ValidateSyncTag(tag)
		if err != nil {
			continue
		}

		items, err := a.store.GetPendingItems(ctx, kind)
		if err != nil {
			a.logger.Warn("Failed to check pending items", "tag", tag, "error", err)
			return
		}
		if len(items) > 0 {
			continue
		}

		if a.dropTag(tag, gen) {
			a.logger.Debug("Background sync completed", "tag", tag)
		}
	}
}

// dropTag удаляет тег, только если он не перерегистрирован после поколения gen
func (a *Agent) dropTag(tag string, gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tags[tag] != gen {
		return false
	}
	delete(a.tags, tag)
	return true
}

// snapshot копирует регистрации вместе с поколениями
func (a *Agent) snapshot() map[string]uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return maps.Clone(a.tags)
}

// registered возвращает отсортированный список зарегистрированных тегов
func (a *Agent) registered() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	tags := make([]string, 0, len(a.tags))
	for tag := range a.tags {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

func (a *Agent) wakeUp() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}
