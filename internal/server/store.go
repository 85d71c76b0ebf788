// Package server implements the todos HTTP server the client syncs against,
// with memory, SQLite and Redis backends.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/todolite/todolite/internal/models"
)

// ErrNotFound is returned by a Store for an unknown todo ID.
var ErrNotFound = errors.New("todo not found")

// Store persists todos. IDs are assigned by the store on Create and
// List returns todos in creation order.
type Store interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id int64) (models.Task, error)
	Create(ctx context.Context, task models.Task) (models.Task, error)
	Update(ctx context.Context, id int64, task models.Task) (models.Task, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Store kinds accepted by OpenStore.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

const (
	defaultSQLitePath = "todolite.db"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultRedisKey   = "todolite"
)

// OpenStore opens the backend named by kind. dsn is the SQLite path or the
// Redis URL; empty selects the default.
func OpenStore(ctx context.Context, kind, dsn string) (Store, error) {
	switch strings.ToLower(kind) {
	case "", StoreMemory:
		return NewMemoryStore(), nil
	case StoreSQLite:
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		return NewSQLiteStore(ctx, dsn)
	case StoreRedis:
		if dsn == "" {
			dsn = defaultRedisURL
		}
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("redis dsn: %w", err)
		}
		return NewRedisStore(ctx, redis.NewClient(opts), defaultRedisKey)
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, sqlite or redis)", kind)
	}
}
