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

	"github.com/iudanet/tmasync/pkg/api"
)

// agentTimeout запросы к локальному агенту должны быть быстрыми
const agentTimeout = 5 * time.Second

//go:generate moq -out agent_mock.go . AgentAPI

// AgentAPI control surface of the background agent used by the CLI client
type AgentAPI interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
	RegisterSync(ctx context.Context, tag string) (*api.RegisterSyncResponse, error)
	TriggerSync(ctx context.Context, tag string) (*api.SyncResponse, error)
	QueueStats(ctx context.Context) (*api.QueueStatsResponse, error)
}

var _ AgentAPI = (*AgentClient)(nil)

// AgentClient HTTP клиент фонового агента
type AgentClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewAgentClient создает клиент агента
func NewAgentClient(baseURL string) *AgentClient {
	return &AgentClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: agentTimeout},
	}
}

// MessagesURL returns the websocket URL of the agent message channel
func (c *AgentClient) MessagesURL() string {
	u := c.baseURL + "/api/v1/messages"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	default:
		return u
	}
}

// Health проверяет, что агент запущен
func (c *AgentClient) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	return &resp, nil
}

// RegisterSync регистрирует тег фоновой синхронизации
func (c *AgentClient) RegisterSync(ctx context.Context, tag string) (*api.RegisterSyncResponse, error) {
	var resp api.RegisterSyncResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync/register", api.RegisterSyncRequest{Tag: tag}, &resp); err != nil {
		return nil, fmt.Errorf("register sync request failed: %w", err)
	}
	return &resp, nil
}

// TriggerSync просит агента обработать очередь сейчас
func (c *AgentClient) TriggerSync(ctx context.Context, tag string) (*api.SyncResponse, error) {
	var resp api.SyncResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync", api.SyncRequest{Tag: tag}, &resp); err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	return &resp, nil
}

// QueueStats получает статистику очереди от агента
func (c *AgentClient) QueueStats(ctx context.Context) (*api.QueueStatsResponse, error) {
	var resp api.QueueStatsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/queue/stats", nil, &resp); err != nil {
		return nil, fmt.Errorf("queue stats request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос
func (c *AgentClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("agent error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
