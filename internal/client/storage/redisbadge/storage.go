package redisbadge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iudanet/tmasync/internal/client/storage"
)

// DefaultKey ключ счетчика бейджа в Redis
const DefaultKey = "tmasync:badge_count"

const pingTimeout = 5 * time.Second

// addScript применяет дельту и не дает счетчику уйти ниже нуля
var addScript = redis.NewScript(`
local v = redis.call('INCRBY', KEYS[1], ARGV[1])
if v < 0 then
	redis.call('SET', KEYS[1], 0)
	return 0
end
return v
`)

var _ storage.BadgeStorage = (*Storage)(nil)

// Storage keeps the badge counter in Redis so that several devices of
// one user share it
type Storage struct {
	client *redis.Client
	key    string
}

// New connects to redisURL and verifies the connection
func New(ctx context.Context, redisURL, key string) (*Storage, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if key == "" {
		key = DefaultKey
	}

	return &Storage{client: client, key: key}, nil
}

// Close closes the redis client
func (s *Storage) Close() error {
	return s.client.Close()
}

// GetBadgeCount returns the persisted badge count, 0 if never set
func (s *Storage) GetBadgeCount(ctx context.Context) (int64, error) {
	count, err := s.client.Get(ctx, s.key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get badge count: %w", err)
	}
	return count, nil
}

// SetBadgeCount stores an absolute value, negative values become 0
func (s *Storage) SetBadgeCount(ctx context.Context, count int64) error {
	if err := s.client.Set(ctx, s.key, max(count, 0), 0).Err(); err != nil {
		return fmt.Errorf("failed to set badge count: %w", err)
	}
	return nil
}

// AddBadgeCount applies delta atomically on the server and returns the new value
func (s *Storage) AddBadgeCount(ctx context.Context, delta int64) (int64, error) {
	count, err := addScript.Run(ctx, s.client, []string{s.key}, delta).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to update badge count: %w", err)
	}
	return count, nil
}
