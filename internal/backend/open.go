// Package backend selects and opens the configured storage driver.
package backend

import (
	"context"
	"errors"
	"fmt"

	"mytasks/internal/backend/cached"
	"mytasks/internal/backend/file"
	"mytasks/internal/backend/googletasks"
	"mytasks/internal/backend/redisstore"
	"mytasks/internal/backend/sqlkv"
	"mytasks/internal/config"
	"mytasks/internal/log"
	"mytasks/internal/storage"
)

// ErrUnknownDriver is returned for a storage.driver value Open does not know.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Open returns the storage named by cfg.Storage.Driver, wrapped in an LRU
// read cache when cfg.Storage.CacheSize is positive.
func Open(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	st, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("driver", cfg.Storage.Driver).Int("cache_size", cfg.Storage.CacheSize).Msg("storage opened")

	if cfg.Storage.CacheSize <= 0 {
		return st, nil
	}
	c, err := cached.New(st, cfg.Storage.CacheSize)
	if err != nil {
		st.Close()
		return nil, err
	}
	return c, nil
}

func open(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile, "":
		return file.New(cfg.StoragePath()), nil
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverSQLite:
		st, err := sqlkv.OpenSQLite(ctx, cfg.StoragePath())
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return st, nil
	case config.DriverMySQL:
		st, err := sqlkv.OpenMySQL(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql storage: %w", err)
		}
		return st, nil
	case config.DriverRedis:
		st, err := redisstore.Open(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB, cfg.Storage.Prefix)
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return st, nil
	case config.DriverGTasks:
		return googletasks.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
}
