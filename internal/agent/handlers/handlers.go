// Package handlers implements the HTTP control surface of the background agent.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/tmasync/internal/drain"
	"github.com/iudanet/tmasync/internal/models"
	"github.com/iudanet/tmasync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Service operations of the background agent exposed over HTTP
type Service interface {
	HandleSyncEvent(ctx context.Context, tag string) (*drain.Result, error)
	RegisterSync(ctx context.Context, tag string) ([]string, error)
	HandlePush(ctx context.Context, push api.PushRequest) api.BadgeDeliveryResponse
	HandleNotificationClick(ctx context.Context, tag string) api.BadgeDeliveryResponse
	Health(ctx context.Context) api.HealthResponse
	QueueStats(ctx context.Context) (*api.QueueStatsResponse, error)
}

// Handler обрабатывает запросы к агенту
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// New создает handler агента
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// Health обрабатывает GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, h.svc.Health(r.Context()))
}

// RegisterSync обрабатывает POST /api/v1/sync/register
func (h *Handler) RegisterSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	registered, err := h.svc.RegisterSync(ctx, req.Tag)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, api.RegisterSyncResponse{
		Tag:        req.Tag,
		Registered: registered,
	})
}

// Sync обрабатывает POST /api/v1/sync: немедленный проход по очереди.
// Пустое тело или пустой тег означают всю очередь.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SyncRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.WarnContext(ctx, "failed to decode sync request", slog.Any("error", err))
			h.sendError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Tag == "" {
		req.Tag = models.SyncTagAll
	}

	result, err := h.svc.HandleSyncEvent(ctx, req.Tag)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, api.SyncResponse{
		Tag:       req.Tag,
		Permanent: result.Permanent,
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Retrying:  result.Retrying,
		Skipped:   result.Skipped,
	})
}

// Push обрабатывает POST /api/v1/push
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var push api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&push); err != nil {
		h.logger.WarnContext(ctx, "failed to decode push", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if push.Title == "" {
		h.sendError(w, "title is required", http.StatusBadRequest)
		return
	}

	h.sendJSON(w, http.StatusAccepted, h.svc.HandlePush(ctx, push))
}

// NotificationClick обрабатывает POST /api/v1/notifications/{tag}/click
func (h *Handler) NotificationClick(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	h.sendJSON(w, http.StatusOK, h.svc.HandleNotificationClick(r.Context(), tag))
}

// QueueStats обрабатывает GET /api/v1/queue/stats
func (h *Handler) QueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.QueueStats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendJSON(w, http.StatusOK, stats)
}

// handleServiceError переводит ошибку сервиса в HTTP статус
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidSyncTag):
		h.sendError(w, models.ErrInvalidSyncTag.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.WarnContext(r.Context(), "request cancelled", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.sendError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		h.logger.ErrorContext(r.Context(), "agent operation failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

// sendJSON отправляет JSON ответ
func (h *Handler) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// sendError отправляет ответ с ошибкой
func (h *Handler) sendError(w http.ResponseWriter, message string, status int) {
	h.sendJSON(w, status, api.ErrorResponse{Error: message})
}
