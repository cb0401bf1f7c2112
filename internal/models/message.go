package models

import "time"

// MessageType тип сообщения от фонового агента к клиенту
type MessageType string

const (
	MessageSyncSuccess    MessageType = "SYNC_SUCCESS"
	MessageSyncFailed     MessageType = "SYNC_FAILED"
	MessageIncrementBadge MessageType = "INCREMENT_BADGE"
	MessageDecrementBadge MessageType = "DECREMENT_BADGE"
)

// Message сообщение, передаваемое агентом подключенным клиентам
type Message struct {
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageType `json:"type"`
	SyncType  string      `json:"sync_type,omitempty"` // SyncType тип операции (kind) для SYNC_* сообщений
	ItemID    string      `json:"item_id,omitempty"`
	Error     string      `json:"error,omitempty"`
	Permanent bool        `json:"permanent,omitempty"` // Permanent true, если запись перенесена в dead-letter
}

// Valid проверяет, что тип сообщения известен
func (m MessageType) Valid() bool {
	switch m {
	case MessageSyncSuccess, MessageSyncFailed, MessageIncrementBadge, MessageDecrementBadge:
		return true
	default:
		return false
	}
}
