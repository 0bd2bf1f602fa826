package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/SahinShazi/HealthSync/internal"
)

const redisKeyPrefix = "healthsync:pref:"

type RedisPreferences struct {
	client *redis.Client
	logger internal.Logger
}

func NewRedisPreferences(client *redis.Client, logger internal.Logger) *RedisPreferences {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &RedisPreferences{client: client, logger: logger}
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, addr, password string, logger internal.Logger) (*RedisPreferences, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: redis ping %s: %w", addr, err)
	}
	return NewRedisPreferences(client, logger), nil
}

func redisKey(key string) string { return redisKeyPrefix + key }

func (r *RedisPreferences) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Errorf("storage: redis get %s: %v", key, err)
		return "", false, fmt.Errorf("storage: redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisPreferences) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, redisKey(key), value, 0).Err(); err != nil {
		r.logger.Errorf("storage: redis set %s: %v", key, err)
		return fmt.Errorf("storage: redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisPreferences) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("storage: redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisPreferences) Close() error { return r.client.Close() }

var _ PreferenceStore = (*RedisPreferences)(nil)
