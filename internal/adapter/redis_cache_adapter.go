package adapter

import (
	"context"
	"errors"
	"time"

	"survey-grader/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCacheAdapter implements domain.Cache on a Redis client. String
// operations back the survey and result caches; hash operations back the
// per-question essay evaluation cache.
type RedisCacheAdapter struct {
	client *redis.Client
}

// NewRedisCacheAdapter wraps a connected *redis.Client.
func NewRedisCacheAdapter(client *redis.Client) domain.Cache {
	return &RedisCacheAdapter{client: client}
}

// stringResult translates redis.Nil into domain.ErrCacheMiss so callers
// never see driver errors.
func stringResult(val string, err error) (string, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (a *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	return stringResult(a.client.Get(ctx, key).Result())
}

func (a *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return a.client.Set(ctx, key, value, expiration).Err()
}

func (a *RedisCacheAdapter) Delete(ctx context.Context, key string) error {
	return a.client.Del(ctx, key).Err()
}

func (a *RedisCacheAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

func (a *RedisCacheAdapter) HGet(ctx context.Context, key, field string) (string, error) {
	return stringResult(a.client.HGet(ctx, key, field).Result())
}

// HGetAll returns the hash at key. A missing key yields an empty map, not
// ErrCacheMiss; Redis does not distinguish the two for hashes.
func (a *RedisCacheAdapter) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	entries, err := a.client.HGetAll(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}
	return entries, nil
}

func (a *RedisCacheAdapter) HSet(ctx context.Context, key string, field string, value string) error {
	return a.client.HSet(ctx, key, field, value).Err()
}

func (a *RedisCacheAdapter) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return a.client.Expire(ctx, key, expiration).Err()
}
