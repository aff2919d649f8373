package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by the factory.
const (
	BackendMemory   = "memory"
	BackendFile     = "csv"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend          string
	FilePath         string
	FileSyncInterval time.Duration
	RedisURL         string
	PostgresDSN      string
	PostgresTable    string
}

// NewAdminRepository builds the admin (read-write) backend. The postgres
// backend is rejected here: it is read-only and may only serve the query
// side (see NewQueryRepository). The returned cleanup releases any client
// the factory created; ctx bounds background work such as the file resync.
func NewAdminRepository(ctx context.Context, cfg Config, logger *slog.Logger) (AdminRepository, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), noop, nil

	case BackendFile:
		store, err := NewFileStore(cfg.FilePath, cfg.FileSyncInterval, logger)
		if err != nil {
			return nil, nil, err
		}
		store.Start(ctx)
		return store, noop, nil

	case BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: parse redis URL: %v", ErrConnectionFailed, err)
		}
		client := redis.NewClient(opts)
		store, err := NewRedisStore(ctx, client)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return store, func() { client.Close() }, nil

	case BackendPostgres:
		return nil, nil, fmt.Errorf("backend %q is read-only and cannot take admin traffic", cfg.Backend)

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewQueryRepository builds the backend serving anonymous queries. An empty
// backend name reuses the admin repository; "postgres" points queries at a
// read replica table while admin traffic mutates another backend.
func NewQueryRepository(ctx context.Context, cfg Config, admin AdminRepository) (QueryRepository, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "":
		return admin, noop, nil

	case BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: postgres pool: %v", ErrConnectionFailed, err)
		}
		store, err := NewPostgresQueryStore(ctx, pool, cfg.PostgresTable)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown query backend %q", cfg.Backend)
	}
}
