package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores the viewer id under "<prefix>viewer_identity:<key>" with a
// sliding expiry.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix, key string, ttl time.Duration) *Redis {
	if key == "" {
		key = "default"
	}
	return &Redis{client: client, key: prefix + "viewer_identity:" + key, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context) (string, error) {
	id, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, r.key, r.ttl).Err(); err != nil {
			return id, fmt.Errorf("redis expire failed: %w", err)
		}
	}
	return id, nil
}

func (r *Redis) Set(ctx context.Context, viewerID string) error {
	id, err := normalize(viewerID)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, id, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *Redis) Key() string {
	return r.key
}
