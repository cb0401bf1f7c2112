package validation

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// KindPattern определяет допустимый формат типа операции
// Только строчные латинские буквы (a-z), цифры (0-9) и дефис, первая буква обязательна
// Длина: 1-64 символа
var KindPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,63}$`)

const (
	// MaxKindLen максимальная длина типа операции
	MaxKindLen = 64
	// ReservedKind занят тегом "sync-all" для всей очереди
	ReservedKind = "all"
)

// ValidateKind проверяет тип операции, по которому строится тег "sync-<kind>"
func ValidateKind(kind string) error {
	if kind == "" {
		return fmt.Errorf("action kind cannot be empty")
	}

	if len(kind) > MaxKindLen {
		return fmt.Errorf("action kind must not exceed %d characters", MaxKindLen)
	}

	if !KindPattern.MatchString(kind) {
		return fmt.Errorf("action kind can only contain lowercase letters (a-z), numbers (0-9) and hyphens, starting with a letter")
	}

	if kind == ReservedKind {
		return fmt.Errorf("action kind %q is reserved for the whole queue", kind)
	}

	return nil
}

// ValidateEndpoint проверяет путь backend API ("/rest/v1/...") или абсолютный http(s) URL
func ValidateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("endpoint URL %q has no host", endpoint)
		}
		return nil
	}

	if strings.ContainsAny(endpoint, " \t\r\n") {
		return fmt.Errorf("endpoint must not contain whitespace")
	}

	return nil
}

// ValidateMethod проверяет HTTP метод изменяющего запроса; пустой означает POST
func ValidateMethod(method string) error {
	switch strings.ToUpper(method) {
	case "", http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return nil
	default:
		return fmt.Errorf("method %s cannot be queued, use POST, PUT, PATCH or DELETE", method)
	}
}
