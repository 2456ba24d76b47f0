package iocache

import (
	"database/sql"
	"sync"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
)

type memoryEntry struct {
	value   []byte
	version int
	ts      int64
}

// MemoryStore keeps cache entries for the lifetime of the process.
// Freshness is decided by the caller from the stored timestamp.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

var _ contract.CacheStore = &MemoryStore{} // Compile-time check

// NewMemoryStore returns an empty in-process cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get retrieves a value by key. A missing key returns sql.ErrNoRows like the SQL stores.
func (ms *MemoryStore) Get(key string) ([]byte, int, int64, error) {
	ms.mu.RLock()
	e, ok := ms.entries[key]
	ms.mu.RUnlock()
	if !ok {
		return nil, 0, 0, sql.ErrNoRows
	}
	return e.value, e.version, e.ts, nil
}

// Set inserts or replaces a key/value pair.
func (ms *MemoryStore) Set(key string, value []byte, version int, timestamp int64) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	ms.mu.Lock()
	ms.entries[key] = memoryEntry{value: stored, version: version, ts: timestamp}
	ms.mu.Unlock()
	return nil
}

// GetStatus returns the entry count, age range and payload size.
func (ms *MemoryStore) GetStatus() (schema.CacheStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	status := schema.CacheStatus{
		Backend:      string(schema.MemoryBackend),
		Connected:    true,
		TotalEntries: len(ms.entries),
	}
	var newest, oldest int64
	for key, e := range ms.entries {
		status.TableSizeBytes += int64(len(key) + len(e.value))
		if newest == 0 || e.ts > newest {
			newest = e.ts
		}
		if oldest == 0 || e.ts < oldest {
			oldest = e.ts
		}
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(newest, 0)
		status.OldestEntryTime = time.Unix(oldest, 0)
	}
	return status, nil
}

// Close drops every entry.
func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	ms.entries = make(map[string]memoryEntry)
	ms.mu.Unlock()
	return nil
}
