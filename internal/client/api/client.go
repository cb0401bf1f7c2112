package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/tmasync/internal/drain"
	"github.com/iudanet/tmasync/internal/models"
	"github.com/iudanet/tmasync/pkg/api"
)

// DefaultTimeout таймаут HTTP клиента по умолчанию
const DefaultTimeout = 30 * time.Second

// Request описывает один вызов backend API
type Request struct {
	Headers  map[string]string
	Endpoint string // путь относительно baseURL или абсолютный URL
	Method   string
	Payload  json.RawMessage
}

var _ drain.Sender = (*Client)(nil)

// Client представляет HTTP клиент для academy backend
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient создает новый API клиент.
// token добавляется как Bearer, если запрос не задает Authorization сам.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call выполняет прямой вызов backend API и возвращает тело ответа
func (c *Client) Call(ctx context.Context, req Request) (json.RawMessage, error) {
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 || !json.Valid(body) {
		return nil, nil
	}

	return json.RawMessage(body), nil
}

// Replay resends a queued item verbatim.
// 4xx responses other than 401, 408 and 429 wrap drain.ErrPermanent.
func (c *Client) Replay(ctx context.Context, item *models.QueueItem) error {
	_, err := c.do(ctx, Request{
		Endpoint: item.Endpoint,
		Method:   item.HTTPMethod(),
		Payload:  item.Payload,
		Headers:  item.Headers,
	})
	if err != nil {
		return fmt.Errorf("replay %s %s: %w", item.HTTPMethod(), item.Endpoint, err)
	}
	return nil
}

// Ping проверяет доступность backend: любой HTTP ответ означает, что сеть есть
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_ = resp.Body.Close()

	return nil
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// do выполняет HTTP запрос и возвращает тело успешного ответа
func (c *Client) do(ctx context.Context, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = http.MethodPost
	}

	var bodyReader io.Reader
	if len(r.Payload) > 0 {
		bodyReader = bytes.NewReader(r.Payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(r.Endpoint), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// statusError формирует ошибку для не-2xx ответа
func statusError(status int, body []byte) error {
	var err error

	var errResp api.ErrorResponse
	if jsonErr := json.Unmarshal(body, &errResp); jsonErr == nil && (errResp.Message != "" || errResp.Error != "") {
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		err = fmt.Errorf("server error (%d): %s", status, msg)
	} else {
		err = fmt.Errorf("request failed with status %d: %s", status, strings.TrimSpace(string(body)))
	}

	if isPermanentStatus(status) {
		return fmt.Errorf("%w: %w", err, drain.ErrPermanent)
	}
	return err
}

// isPermanentStatus: ошибки клиента не исправятся повтором.
// Исключения: истекший токен, таймаут и лимит запросов.
func isPermanentStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}
