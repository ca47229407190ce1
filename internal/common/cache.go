package common

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheInterface is the key/value cache shared by the record store and the
// token revocation list. Values read back from Redis come out as generic
// JSON types, so callers must not rely on getting their own type back.
type CacheInterface interface {
	Set(key string, value interface{}, duration time.Duration)
	Get(key string) (interface{}, bool)
	Delete(key string)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Backend names the implementation, "memory" or "redis".
	Backend() string
	Close() error
}

// MemoryCache keeps entries in process with go-cache.
type MemoryCache struct {
	cache *cache.Cache
}

var _ CacheInterface = (*MemoryCache)(nil)

func NewMemoryCache(defaultExpiration, cleanUpInterval time.Duration) *MemoryCache {
	return &MemoryCache{cache: cache.New(defaultExpiration, cleanUpInterval)}
}

func (m *MemoryCache) Set(key string, value interface{}, duration time.Duration) {
	m.cache.Set(key, value, duration)
}

func (m *MemoryCache) Get(key string) (interface{}, bool) { return m.cache.Get(key) }

func (m *MemoryCache) Delete(key string) { m.cache.Delete(key) }

func (m *MemoryCache) Ping(ctx context.Context) error { return nil }

func (m *MemoryCache) Backend() string { return "memory" }

// Close drops every entry.
func (m *MemoryCache) Close() error {
	m.cache.Flush()
	return nil
}
