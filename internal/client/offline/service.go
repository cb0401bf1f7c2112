// Package offline provides the entry points domain code uses to send
// actions that must survive a lost connection.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iudanet/tmasync/internal/client/api"
	"github.com/iudanet/tmasync/internal/client/connectivity"
	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/client/sync"
	"github.com/iudanet/tmasync/internal/models"
	"github.com/iudanet/tmasync/internal/validation"
)

// Status итог офлайн-операции
type Status string

const (
	// StatusSent запрос выполнен напрямую
	StatusSent Status = "sent"
	// StatusQueued запрос сохранен в очереди и будет отправлен позже
	StatusQueued Status = "queued"
	// StatusFailedToQueue запрос не отправлен и не сохранен; действие потеряно
	StatusFailedToQueue Status = "failed-to-queue"
)

// Result is returned by every facade call instead of an error
type Result struct {
	// Err ошибка прямого вызова (для queued) или хранилища (для failed-to-queue)
	Err      error
	Status   Status
	ItemID   string
	Response json.RawMessage
	// Offline true, если запрос поставлен в очередь без попытки отправки
	Offline bool
}

//go:generate moq -out caller_mock.go . Caller

// Caller performs a direct backend call. api.Client implements it.
type Caller interface {
	Call(ctx context.Context, req api.Request) (json.RawMessage, error)
}

// Badge is incremented for every queued action
type Badge interface {
	IncrementBadge(ctx context.Context) int64
}

// Endpoints пути backend API для доменных операций
type Endpoints struct {
	Attendance    string
	TrainingPlans string
	Performance   string
	Messages      string
}

// DefaultEndpoints returns the academy REST endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Attendance:    "/rest/v1/attendance",
		TrainingPlans: "/rest/v1/training_plans",
		Performance:   "/rest/v1/performance",
		Messages:      "/rest/v1/messages",
	}
}

// Options описывает запрос для APICallOffline
type Options struct {
	Headers  map[string]string
	Endpoint string
	Method   string
}

// Service decides between a direct call and the durable queue
type Service struct {
	caller     Caller
	store      storage.QueueStorage
	conn       connectivity.Checker
	badge      Badge
	sync       sync.Manager
	logger     *slog.Logger
	endpoints  Endpoints
	maxRetries int
}

// NewService creates the facade. badge and manager may be nil.
func NewService(
	caller Caller,
	store storage.QueueStorage,
	conn connectivity.Checker,
	badge Badge,
	manager sync.Manager,
	endpoints Endpoints,
	maxRetries int,
	logger *slog.Logger,
) *Service {
	if maxRetries < 0 {
		maxRetries = models.DefaultMaxRetries
	}

	return &Service{
		caller:     caller,
		store:      store,
		conn:       conn,
		badge:      badge,
		sync:       manager,
		endpoints:  endpoints,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// MarkAttendanceOffline records attendance
func (s *Service) MarkAttendanceOffline(ctx context.Context, record any) Result {
	return s.APICallOffline(ctx, models.KindAttendance, record, Options{Endpoint: s.endpoints.Attendance})
}

// SubmitFormOffline submits a generic form to endpoint.
// An empty kind means "generic-form".
func (s *Service) SubmitFormOffline(ctx context.Context, kind, endpoint string, payload any) Result {
	if kind == "" {
		kind = models.KindGenericForm
	}
	return s.APICallOffline(ctx, kind, payload, Options{Endpoint: endpoint})
}

// CreateTrainingPlanOffline creates a training plan
func (s *Service) CreateTrainingPlanOffline(ctx context.Context, plan any) Result {
	return s.APICallOffline(ctx, models.KindTrainingPlan, plan, Options{Endpoint: s.endpoints.TrainingPlans})
}

// UpdatePerformanceOffline upserts performance data
func (s *Service) UpdatePerformanceOffline(ctx context.Context, performance any) Result {
	return s.APICallOffline(ctx, models.KindPerformanceUpdate, performance, Options{
		Endpoint: s.endpoints.Performance,
		Headers:  map[string]string{"Prefer": "resolution=merge-duplicates"},
	})
}

// SendMessageOffline sends a message
func (s *Service) SendMessageOffline(ctx context.Context, message any) Result {
	return s.APICallOffline(ctx, models.KindMessage, message, Options{Endpoint: s.endpoints.Messages})
}

// APICallOffline sends payload directly when online and queues it otherwise.
// A failed direct call is queued as well.
func (s *Service) APICallOffline(ctx context.Context, kind string, payload any, opts Options) Result {
	// Тип становится тегом "sync-<kind>"; недопустимый не должен попасть в очередь
	if err := validation.ValidateKind(kind); err != nil {
		return Result{Status: StatusFailedToQueue, Err: fmt.Errorf("invalid action kind: %w", err)}
	}
	if err := validation.ValidateEndpoint(opts.Endpoint); err != nil {
		return Result{Status: StatusFailedToQueue, Err: fmt.Errorf("invalid endpoint: %w", err)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Status: StatusFailedToQueue, Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}

	item := &models.QueueItem{
		Kind:       kind,
		Endpoint:   opts.Endpoint,
		Method:     method,
		Headers:    opts.Headers,
		Payload:    body,
		MaxRetries: s.maxRetries,
	}

	if !s.conn.IsOnline() {
		result := s.enqueue(ctx, item)
		if result.Status == StatusQueued {
			result.Offline = true
			s.logger.Info("Action queued for sync (offline)", "kind", kind, "item_id", result.ItemID)
		}
		return result
	}

	resp, err := s.caller.Call(ctx, api.Request{
		Endpoint: opts.Endpoint,
		Method:   method,
		Headers:  opts.Headers,
		Payload:  body,
	})
	if err == nil {
		s.logger.Info("Action sent", "kind", kind)
		return Result{Status: StatusSent, Response: resp}
	}

	s.logger.Warn("Direct call failed, queueing for sync", "kind", kind, "error", err)

	result := s.enqueue(ctx, item)
	if result.Status == StatusQueued {
		result.Err = err
	}
	return result
}

// enqueue сохраняет запись; ошибка хранилища возвращается пользователю сразу
func (s *Service) enqueue(ctx context.Context, item *models.QueueItem) Result {
	id, err := s.store.AddToSyncQueue(ctx, item)
	if err != nil {
		s.logger.Error("Failed to queue action, it may be lost", "kind", item.Kind, "error", err)
		return Result{Status: StatusFailedToQueue, Err: err}
	}

	if s.badge != nil {
		s.badge.IncrementBadge(ctx)
	}
	if s.sync != nil {
		s.sync.RegisterBackgroundSync(ctx, item.Kind)
	}

	return Result{Status: StatusQueued, ItemID: id}
}
