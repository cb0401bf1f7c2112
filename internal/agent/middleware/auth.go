package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/tmasync/pkg/api"
)

// contextKey тип для ключей контекста
type contextKey string

// SenderKey ключ отправителя push в контексте запроса
const SenderKey contextKey = "push_sender"

// SenderFromContext возвращает отправителя, установленного PushAuthMiddleware
func SenderFromContext(ctx context.Context) (string, bool) {
	sender, ok := ctx.Value(SenderKey).(string)
	return sender, ok
}

// PushAuthMiddleware проверяет Bearer токен отправителя push-уведомлений.
// Пустой secret отключает проверку (агент слушает только локальный адрес).
func PushAuthMiddleware(logger *slog.Logger, secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				unauthorized(w, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.Warn("Invalid Authorization header format", "path", r.URL.Path)
				unauthorized(w, "invalid token format")
				return
			}

			claims, err := ValidatePushToken(secret, token)
			if err != nil {
				logger.Warn("Invalid push token", "error", err)
				unauthorized(w, "invalid token")
				return
			}

			logger.Debug("Push sender authenticated", "sender", claims.Sender)

			ctx := context.WithValue(r.Context(), SenderKey, claims.Sender)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized", Message: message})
}
