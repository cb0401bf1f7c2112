package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/tmasync/internal/crypto"
	"github.com/iudanet/tmasync/internal/models"
)

// Sealed wraps a Store and encrypts queued payloads at rest.
// A sealed payload is kept as a JSON string "tmaseal:v1:<base64>",
// so the stored item stays valid JSON for every backend.
type Sealed struct {
	Store
	sealer *crypto.Sealer
}

// NewSealed derives the sealing key from passphrase and the salt kept in store
func NewSealed(ctx context.Context, store Store, passphrase string) (*Sealed, error) {
	salt, err := store.GetOrCreateSealSalt(ctx)
	if err != nil {
		return nil, err
	}

	key, err := crypto.DeriveSealKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive seal key: %w", err)
	}

	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, err
	}

	return &Sealed{Store: store, sealer: sealer}, nil
}

// AddToSyncQueue seals the payload before it reaches the underlying store
func (s *Sealed) AddToSyncQueue(ctx context.Context, item *models.QueueItem) (string, error) {
	sealed := item.Clone()

	if len(item.Payload) > 0 {
		text, err := s.sealer.Seal(item.Payload)
		if err != nil {
			return "", fmt.Errorf("failed to seal payload: %w", err)
		}

		data, err := json.Marshal(text)
		if err != nil {
			return "", fmt.Errorf("failed to encode sealed payload: %w", err)
		}
		sealed.Payload = data
	}

	id, err := s.Store.AddToSyncQueue(ctx, sealed)
	if err != nil {
		return "", err
	}

	item.ID = sealed.ID
	item.Seq = sealed.Seq
	item.CreatedAt = sealed.CreatedAt

	return id, nil
}

// GetPendingItems returns items with opened payloads
func (s *Sealed) GetPendingItems(ctx context.Context, kind string) ([]*models.QueueItem, error) {
	items, err := s.Store.GetPendingItems(ctx, kind)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := s.open(item); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// GetItem returns the item with an opened payload
func (s *Sealed) GetItem(ctx context.Context, id string) (*models.QueueItem, error) {
	item, err := s.Store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.open(item); err != nil {
		return nil, err
	}

	return item, nil
}

// RecordFailure returns the updated item with an opened payload
func (s *Sealed) RecordFailure(ctx context.Context, id, owner, errMsg string) (*models.QueueItem, error) {
	item, err := s.Store.RecordFailure(ctx, id, owner, errMsg)
	if err != nil {
		return nil, err
	}

	if err := s.open(item); err != nil {
		return nil, err
	}

	return item, nil
}

// ListDeadLetters returns dead letters with opened payloads
func (s *Sealed) ListDeadLetters(ctx context.Context) ([]*models.DeadLetter, error) {
	letters, err := s.Store.ListDeadLetters(ctx)
	if err != nil {
		return nil, err
	}

	for _, letter := range letters {
		if err := s.open(letter.Item); err != nil {
			return nil, err
		}
	}

	return letters, nil
}

// open расшифровывает payload на месте; незашифрованные записи
// (созданные до включения шифрования) возвращаются как есть
func (s *Sealed) open(item *models.QueueItem) error {
	if item == nil || len(item.Payload) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(item.Payload, &text); err != nil || !crypto.IsSealed(text) {
		return nil
	}

	plaintext, err := s.sealer.Open(text)
	if err != nil {
		return fmt.Errorf("failed to open payload of item %s: %w", item.ID, err)
	}

	item.Payload = plaintext
	return nil
}
