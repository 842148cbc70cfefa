package advisory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMarkers stores advisory markers as Redis keys with TTLs, so window
// expiry needs no sweeper.
type RedisMarkers struct {
	client *redis.Client
	prefix string
}

func NewRedisMarkers(client *redis.Client) *RedisMarkers {
	return &RedisMarkers{client: client, prefix: "lifelink:advisory:"}
}

func (m *RedisMarkers) Set(ctx context.Context, key string, window time.Duration) error {
	if err := m.client.Set(ctx, m.prefix+key, "1", window).Err(); err != nil {
		return fmt.Errorf("set advisory marker: %w", err)
	}
	return nil
}

func (m *RedisMarkers) Exists(ctx context.Context, key string) (bool, error) {
	n, err := m.client.Exists(ctx, m.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check advisory marker: %w", err)
	}
	return n > 0, nil
}
