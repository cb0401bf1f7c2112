package models

import (
	"encoding/json"
	"net/http"
	"time"
)

// Kind константы для типов отложенных операций
const (
	KindAttendance        = "attendance"
	KindGenericForm       = "generic-form"
	KindTrainingPlan      = "training-plan"
	KindPerformanceUpdate = "performance-update"
	KindMessage           = "message"
)

// DefaultMaxRetries - количество повторов по умолчанию (после первой попытки)
const DefaultMaxRetries = 3

// SyncTagPrefix префикс тега фоновой синхронизации: "sync-<kind>"
const SyncTagPrefix = "sync-"

// SyncTagAll тег, который запускает обработку всей очереди
const SyncTagAll = SyncTagPrefix + "all"

// QueueItem представляет одну отложенную операцию, ожидающую повторной отправки.
// Создается фасадом в момент офлайн-действия пользователя и изменяется
// только менеджером синхронизации и фоновым агентом.
type QueueItem struct {
	CreatedAt  time.Time         `json:"created_at"`            // CreatedAt время постановки в очередь
	LeaseUntil time.Time         `json:"lease_until,omitzero"`  // LeaseUntil срок действия in-flight метки
	Headers    map[string]string `json:"headers,omitempty"`     // Headers дополнительные заголовки для повторной отправки
	ID         string            `json:"id"`                    // ID UUIDv7: время генерации + случайный суффикс
	Kind       string            `json:"kind"`                  // Kind тип операции ("attendance", "training-plan", ...)
	Endpoint   string            `json:"endpoint"`              // Endpoint путь или URL для повторной отправки
	Method     string            `json:"method"`                // Method HTTP метод
	LastError  string            `json:"last_error,omitempty"`  // LastError текст последней ошибки
	LeaseOwner string            `json:"lease_owner,omitempty"` // LeaseOwner идентификатор обработчика, взявшего запись
	Payload    json.RawMessage   `json:"payload"`               // Payload тело запроса, отправляется без изменений
	Seq        uint64            `json:"seq"`                   // Seq порядковый номер вставки (FIFO)
	RetryCount int               `json:"retry_count"`           // RetryCount количество неудачных попыток
	MaxRetries int               `json:"max_retries"`           // MaxRetries потолок повторов
}

// HTTPMethod возвращает метод запроса, по умолчанию POST
func (i *QueueItem) HTTPMethod() string {
	if i.Method == "" {
		return http.MethodPost
	}
	return i.Method
}

// SyncTag возвращает тег фоновой синхронизации для записи
func (i *QueueItem) SyncTag() string {
	return SyncTagFor(i.Kind)
}

// Exhausted сообщает, что потолок повторов превышен и запись больше не повторяется
func (i *QueueItem) Exhausted() bool {
	return i.RetryCount > i.MaxRetries
}

// Leased сообщает, есть ли у записи живая in-flight метка.
// Живая метка исключает любой другой проход, в том числе с тем же владельцем.
func (i *QueueItem) Leased(now time.Time) bool {
	return i.LeaseOwner != "" && now.Before(i.LeaseUntil)
}

// Clone создает глубокую копию записи
func (i *QueueItem) Clone() *QueueItem {
	c := *i

	if i.Payload != nil {
		c.Payload = make(json.RawMessage, len(i.Payload))
		copy(c.Payload, i.Payload)
	}

	if i.Headers != nil {
		c.Headers = make(map[string]string, len(i.Headers))
		for k, v := range i.Headers {
			c.Headers[k] = v
		}
	}

	return &c
}

// DeadLetter запись, исключенная из цикла повторов после превышения потолка
type DeadLetter struct {
	FailedAt time.Time  `json:"failed_at"`
	Item     *QueueItem `json:"item"`
	Reason   string     `json:"reason"`
}

// QueueStats агрегированная статистика очереди для отображения в UI
type QueueStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Retrying int `json:"retrying"`
	InFlight int `json:"in_flight"`
	Failed   int `json:"failed"`
}

// SyncTagFor возвращает тег фоновой синхронизации для типа операции.
// Пустой kind означает всю очередь.
func SyncTagFor(kind string) string {
	if kind == "" {
		return SyncTagAll
	}
	return SyncTagPrefix + kind
}

// KindFromSyncTag извлекает тип операции из тега.
// Для "sync-all" возвращает пустую строку (вся очередь).
func KindFromSyncTag(tag string) (string, bool) {
	if len(tag) <= len(SyncTagPrefix) || tag[:len(SyncTagPrefix)] != SyncTagPrefix {
		return "", false
	}
	if tag == SyncTagAll {
		return "", true
	}
	return tag[len(SyncTagPrefix):], true
}
