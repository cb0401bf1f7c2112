package drain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/models"
)

// DefaultRequestTimeout ограничивает одну попытку отправки
const DefaultRequestTimeout = 30 * time.Second

// DefaultLeaseGrace запас сверх таймаута запроса для in-flight метки
const DefaultLeaseGrace = 10 * time.Second

//go:generate moq -out sender_mock.go . Sender

// Sender replays one queued item against the backend
type Sender interface {
	Replay(ctx context.Context, item *models.QueueItem) error
}

// Badge receives the badge delta for a handled item
type Badge interface {
	AddBadge(ctx context.Context, delta int64) int64
}

// Notifier receives SYNC_SUCCESS / SYNC_FAILED messages
type Notifier interface {
	Notify(ctx context.Context, msg models.Message)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, msg models.Message)

// Notify calls f(ctx, msg)
func (f NotifierFunc) Notify(ctx context.Context, msg models.Message) {
	f(ctx, msg)
}

// Config параметры прохода
type Config struct {
	// Owner префикс владельца in-flight метки; каждый проход дописывает свой ID
	Owner string
	// RequestTimeout таймаут одной попытки; таймаут считается неудачной попыткой
	RequestTimeout time.Duration
	// LeaseGrace добавляется к RequestTimeout при установке метки
	LeaseGrace time.Duration
}

// Result итоги одного прохода по очереди
type Result struct {
	// Permanent ID записей, перемещенных в dead-letter
	Permanent []string
	// Attempted количество выполненных попыток отправки
	Attempted int
	// Succeeded количество отправленных и удаленных записей
	Succeeded int
	// Retrying количество записей, оставленных для повтора
	Retrying int
	// Skipped количество записей, которые обрабатывает другой проход
	Skipped int
}

// Drainer runs drain passes over the durable queue.
// The CLI sync manager and the background agent use the same Drainer,
// each with its own owner ID.
type Drainer struct {
	store    storage.QueueStorage
	meta     storage.MetadataStorage
	sender   Sender
	badge    Badge
	notifier Notifier
	logger   *slog.Logger
	cfg      Config
}

// New creates a Drainer. meta, badge and notifier may be nil.
func New(store storage.QueueStorage, meta storage.MetadataStorage, sender Sender, badge Badge, notifier Notifier, cfg Config, logger *slog.Logger) *Drainer {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.LeaseGrace <= 0 {
		cfg.LeaseGrace = DefaultLeaseGrace
	}

	return &Drainer{
		store:    store,
		meta:     meta,
		sender:   sender,
		badge:    badge,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

// Owner returns the lease owner prefix of this drainer
func (d *Drainer) Owner() string {
	return d.cfg.Owner
}

// passOwner уникальный владелец меток одного прохода: параллельные проходы
// одного Drainer не должны брать одну и ту же запись
func (d *Drainer) passOwner() string {
	return d.cfg.Owner + "/" + uuid.NewString()
}

// Drain processes pending items of kind (all kinds if empty) in FIFO order.
// A failed item never blocks the items after it.
func (d *Drainer) Drain(ctx context.Context, kind string) (*Result, error) {
	items, err := d.store.GetPendingItems(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending items: %w", err)
	}

	result := &Result{}
	if len(items) == 0 {
		return result, nil
	}

	owner := d.passOwner()
	d.logger.Info("Starting drain pass", "owner", owner, "kind", kind, "pending", len(items))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			d.logger.Info("Drain pass cancelled", "owner", owner, "error", err)
			return result, err
		}

		d.processItem(ctx, owner, item, result)
	}

	if result.Succeeded > 0 && d.meta != nil {
		if err := d.meta.SaveLastSyncTimestamp(ctx, time.Now().Unix()); err != nil {
			d.logger.Warn("Failed to save last sync timestamp", "error", err)
		}
	}

	d.logger.Info("Drain pass completed",
		"owner", owner,
		"attempted", result.Attempted,
		"succeeded", result.Succeeded,
		"retrying", result.Retrying,
		"permanent", len(result.Permanent),
		"skipped", result.Skipped)

	return result, nil
}

func (d *Drainer) processItem(ctx context.Context, owner string, item *models.QueueItem, result *Result) {
	// Ставим in-flight метку; запись, взятую другим проходом или уже удаленную, пропускаем
	claimed, err := d.store.ClaimItem(ctx, item.ID, owner, d.cfg.RequestTimeout+d.cfg.LeaseGrace)
	if err != nil {
		d.logger.Warn("Failed to claim item", "item_id", item.ID, "error", err)
		result.Skipped++
		return
	}
	if !claimed {
		d.logger.Debug("Item is handled by another drain pass", "item_id", item.ID)
		result.Skipped++
		return
	}

	result.Attempted++

	reqCtx, cancel := context.WithTimeout(ctx, d.cfg.RequestTimeout)
	sendErr := d.sender.Replay(reqCtx, item)
	cancel()

	if sendErr == nil {
		d.onSuccess(ctx, item, result)
		return
	}

	d.onFailure(ctx, owner, item, sendErr, result)
}

func (d *Drainer) onSuccess(ctx context.Context, item *models.QueueItem, result *Result) {
	if err := d.store.RemoveFromSyncQueue(ctx, item.ID); err != nil {
		// Запись отправлена, но осталась в очереди; метка истечет и запись повторится
		d.logger.Error("Failed to remove synced item", "item_id", item.ID, "error", err)
		return
	}

	result.Succeeded++
	d.logger.Info("Synced item", "item_id", item.ID, "kind", item.Kind)

	d.adjustBadge(ctx)
	d.notify(ctx, models.Message{
		Type:     models.MessageSyncSuccess,
		SyncType: item.Kind,
		ItemID:   item.ID,
	})
}

func (d *Drainer) onFailure(ctx context.Context, owner string, item *models.QueueItem, sendErr error, result *Result) {
	d.logger.Warn("Failed to sync item", "item_id", item.ID, "kind", item.Kind, "error", sendErr)

	updated, err := d.store.RecordFailure(ctx, item.ID, owner, sendErr.Error())
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return
		}
		d.logger.Error("Failed to record sync failure", "item_id", item.ID, "error", err)
		_ = d.store.ReleaseItem(ctx, item.ID, owner)
		result.Retrying++
		return
	}

	msg := models.Message{
		Type:     models.MessageSyncFailed,
		SyncType: item.Kind,
		ItemID:   item.ID,
		Error:    sendErr.Error(),
	}

	switch DecideItem(updated, sendErr) {
	case ActionDeadLetter:
		reason := fmt.Sprintf("gave up after %d attempts: %s", updated.RetryCount, sendErr)
		if err := d.store.MoveToDeadLetter(ctx, item.ID, reason); err != nil {
			d.logger.Error("Failed to move item to dead letter", "item_id", item.ID, "error", err)
			result.Retrying++
			return
		}

		d.logger.Error("Item permanently failed", "item_id", item.ID, "kind", item.Kind, "attempts", updated.RetryCount)
		result.Permanent = append(result.Permanent, item.ID)
		msg.Permanent = true
		d.adjustBadge(ctx)
	default:
		result.Retrying++
	}

	d.notify(ctx, msg)
}

// adjustBadge уменьшает счетчик: запись больше не ожидает синхронизации
func (d *Drainer) adjustBadge(ctx context.Context) {
	if d.badge != nil {
		d.badge.AddBadge(ctx, -1)
	}
}

func (d *Drainer) notify(ctx context.Context, msg models.Message) {
	if d.notifier == nil {
		return
	}
	msg.Timestamp = time.Now()
	d.notifier.Notify(ctx, msg)
}
