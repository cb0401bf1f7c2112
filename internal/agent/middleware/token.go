package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// pushIssuer значение iss в токенах отправителей push
const pushIssuer = "tmasync-agent"

// PushClaims claims токена отправителя push-уведомлений
type PushClaims struct {
	Sender string `json:"sender"`
	jwt.RegisteredClaims
}

// GeneratePushToken выпускает токен для отправителя push-уведомлений
func GeneratePushToken(secret []byte, sender string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("push secret is empty")
	}

	now := time.Now()
	claims := PushClaims{
		Sender: sender,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    pushIssuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

// ValidatePushToken проверяет подпись, срок действия и издателя токена
func ValidatePushToken(secret []byte, tokenString string) (*PushClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PushClaims{}, func(token *jwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(pushIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*PushClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
