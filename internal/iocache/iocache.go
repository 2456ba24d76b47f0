package iocache

import (
	"sync"

	"github.com/huangsam/snowdash/internal/contract"
)

// CacheStoreManager manages the query cache and snapshot stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	query        contract.CacheStore
	snapshot     contract.SnapshotStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager wraps already opened stores. Either may be nil.
func NewCacheStoreManager(query contract.CacheStore, snapshot contract.SnapshotStore) *CacheStoreManager {
	return &CacheStoreManager{query: query, snapshot: snapshot}
}

// GetQueryStore returns the query result CacheStore.
func (mgr *CacheStoreManager) GetQueryStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.query
}

// GetSnapshotStore returns the SnapshotStore.
func (mgr *CacheStoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshot
}
