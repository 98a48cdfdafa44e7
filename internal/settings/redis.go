package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is where the platform entity cache publishes the settings
// document.
const DefaultKey = "cache:settings"

// RedisProvider reads the settings entity from the shared Redis cache.
// One GET per invocation, no local copy.
type RedisProvider struct {
	client redis.Cmdable
	key    string
}

func NewRedisProvider(client redis.Cmdable, key string) *RedisProvider {
	if key == "" {
		key = DefaultKey
	}
	return &RedisProvider{client: client, key: key}
}

func (p *RedisProvider) Get(ctx context.Context) (Settings, error) {
	raw, err := p.client.Get(ctx, p.key).Result()
	if errors.Is(err, redis.Nil) {
		// No settings published yet: feature reads as disabled.
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("fetch settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}
