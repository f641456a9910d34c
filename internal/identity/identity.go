// Package identity persists the viewer identifier between sessions.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cc-live/internal/config"
	"cc-live/internal/store"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL matches the lifetime the viewer page gave its identity cookie.
const DefaultTTL = 180 * 24 * time.Hour

// Store reads and writes one viewer id. Get returns "" with a nil error when
// nothing has been stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, viewerID string) error
}

// Open builds the backend selected by cfg. The returned close func releases
// its connections.
func Open(ctx context.Context, cfg config.IdentityConfig) (Store, func(), error) {
	switch cfg.Backend {
	case "", config.IdentityBackendMemory:
		return NewMemory(""), func() {}, nil
	case config.IdentityBackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedis(client, cfg.RedisKeyPrefix, cfg.Key, DefaultTTL), func() { _ = client.Close() }, nil
	case config.IdentityBackendPostgres:
		st, err := store.New(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("postgres ping: %w", err)
		}
		return NewPostgres(st, cfg.Key), st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown identity backend %q", cfg.Backend)
	}
}

func normalize(viewerID string) (string, error) {
	id := strings.TrimSpace(viewerID)
	if id == "" {
		return "", ErrEmptyViewerID
	}
	return id, nil
}
