package contract

import "github.com/huangsam/snowdash/schema"

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetQueryStore() CacheStore
	GetSnapshotStore() SnapshotStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// CacheObserver receives cache lookup outcomes per query operation.
type CacheObserver interface {
	CacheHit(operation string)
	CacheMiss(operation string)
}
