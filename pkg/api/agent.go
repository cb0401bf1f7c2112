package api

// HealthResponse ответ GET /api/v1/health агента
type HealthResponse struct {
	Status     string `json:"status"`     // "ok"
	Version    string `json:"version"`    // версия агента
	Clients    int    `json:"clients"`    // количество подключенных клиентов
	Registered int    `json:"registered"` // количество зарегистрированных тегов синхронизации
	Online     bool   `json:"online"`     // доступен ли backend с точки зрения агента
}

// RegisterSyncRequest запрос регистрации фоновой синхронизации
type RegisterSyncRequest struct {
	Tag string `json:"tag"` // "sync-<kind>" или "sync-all"
}

// RegisterSyncResponse ответ на регистрацию
type RegisterSyncResponse struct {
	Tag        string   `json:"tag"`
	Registered []string `json:"registered"` // все зарегистрированные теги
}

// SyncRequest запрос немедленной обработки очереди агентом
type SyncRequest struct {
	Tag string `json:"tag"` // пустой тег означает всю очередь
}

// SyncResponse итоги прохода по очереди
type SyncResponse struct {
	Tag       string   `json:"tag"`
	Permanent []string `json:"permanent,omitempty"` // ID записей, перемещенных в dead-letter
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Retrying  int      `json:"retrying"`
	Skipped   int      `json:"skipped"`
}

// PushRequest входящее push-уведомление
type PushRequest struct {
	Data  map[string]string `json:"data,omitempty"`
	Title string            `json:"title"`
	Body  string            `json:"body,omitempty"`
	Tag   string            `json:"tag,omitempty"` // тег уведомления, используется при клике
}

// BadgeDeliveryResponse ответ на push и клик по уведомлению
type BadgeDeliveryResponse struct {
	Delivery   string `json:"delivery"`              // "clients" или "direct"
	BadgeCount int64  `json:"badge_count,omitempty"` // новое значение при прямом изменении
	Clients    int    `json:"clients"`               // количество клиентов, получивших сообщение
}

// Delivery значения для BadgeDeliveryResponse.Delivery
const (
	DeliveryClients = "clients"
	DeliveryDirect  = "direct"
)

// QueueStatsResponse статистика очереди
type QueueStatsResponse struct {
	Total      int   `json:"total"`
	Pending    int   `json:"pending"`
	Retrying   int   `json:"retrying"`
	InFlight   int   `json:"in_flight"`
	Failed     int   `json:"failed"`
	BadgeCount int64 `json:"badge_count"`
	LastSyncAt int64 `json:"last_sync_at"` // unix time последнего успешного прохода, 0 если не было
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
