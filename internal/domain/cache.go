package domain

import (
	"context"
	"time"
)

// CacheError is a string-backed error type, so cache sentinels can be
// declared as constants.
type CacheError string

func (e CacheError) Error() string { return string(e) }

// ErrCacheMiss signals that the requested key holds no value.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the port the services cache through. RedisCacheAdapter is
// the production implementation.
type Cache interface {
	// Get returns the value at key, or ErrCacheMiss when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. A zero expiration means no TTL.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// HGet returns the value of one field in the hash at key, or
	// ErrCacheMiss when the field is absent.
	HGet(ctx context.Context, key, field string) (string, error)

	// HGetAll returns every field of the hash at key. A missing key
	// yields an empty map.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HSet writes one field of the hash at key.
	HSet(ctx context.Context, key string, field string, value string) error

	// Expire attaches a TTL to key.
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
