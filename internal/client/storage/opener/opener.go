// Package opener builds the queue store described by the configuration.
package opener

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iudanet/tmasync/internal/client/storage"
	"github.com/iudanet/tmasync/internal/client/storage/boltdb"
	"github.com/iudanet/tmasync/internal/client/storage/redisbadge"
	"github.com/iudanet/tmasync/internal/client/storage/sqlite"
	"github.com/iudanet/tmasync/internal/config"
)

// Open opens the queue store, attaches the Redis badge store and payload
// sealing when configured. Close on the result releases everything.
func Open(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var (
		store storage.Store
		err   error
	)
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err = sqlite.New(ctx, cfg.Storage.Path)
	default:
		store, err = boltdb.New(ctx, cfg.Storage.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open queue store: %w", err)
	}

	if cfg.Badge.Store == config.BadgeStoreRedis {
		shared, err := redisbadge.New(ctx, cfg.Badge.RedisURL, redisbadge.DefaultKey)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect badge store: %w", err)
		}
		store = storage.WithBadge(store, shared)
	}

	if cfg.Storage.Passphrase != "" {
		sealed, err := storage.NewSealed(ctx, store, cfg.Storage.Passphrase)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to enable payload sealing: %w", err)
		}
		store = sealed
	}

	return store, nil
}
