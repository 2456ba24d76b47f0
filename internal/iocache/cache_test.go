package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals points the default SQLite paths at a temp home and resets the once guards.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitCaching(t *testing.T) {
	t.Run("memory cache without snapshots", func(t *testing.T) {
		resetGlobals(t)

		require.NoError(t, InitCaching(schema.MemoryBackend, "", "", ""))
		store := Manager.GetQueryStore()
		require.NotNil(t, store)
		assert.IsType(t, &MemoryStore{}, store)
		assert.Nil(t, Manager.GetSnapshotStore(), "Snapshots should be disabled")
	})

	t.Run("sqlite cache and snapshots", func(t *testing.T) {
		resetGlobals(t)

		require.NoError(t, InitCaching(schema.SQLiteBackend, "", schema.SQLiteBackend, ""))
		assert.NotNil(t, Manager.GetQueryStore())
		assert.NotNil(t, Manager.GetSnapshotStore())
		CloseCaching()

		_, err := os.Stat(GetDBFilePath())
		assert.NoError(t, err, "Cache database file should be created")
		_, err = os.Stat(GetSnapshotDBFilePath())
		assert.NoError(t, err, "Snapshot database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)

		// Multiple initializations should be safe (sync.Once)
		assert.NoError(t, InitCaching(schema.MemoryBackend, "", "", ""))
		first := Manager.GetQueryStore()
		assert.NoError(t, InitCaching(schema.SQLiteBackend, "", "", ""))
		assert.Same(t, first, Manager.GetQueryStore(), "Second init should not replace the store")

		// Multiple closes should be safe (sync.Once)
		CloseCaching()
		CloseCaching()
	})

	t.Run("none backend", func(t *testing.T) {
		resetGlobals(t)

		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, ""))
		assert.NotNil(t, Manager.GetQueryStore())
		assert.NotNil(t, Manager.GetSnapshotStore())
	})

	t.Run("bad connection", func(t *testing.T) {
		resetGlobals(t)

		err := InitCaching(schema.MySQLBackend, "invalid://connection", "", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize query caching")
	})

	t.Run("bad snapshot backend closes cache", func(t *testing.T) {
		resetGlobals(t)

		err := InitCaching(schema.MemoryBackend, "", "bogus", "")
		assert.ErrorContains(t, err, "failed to initialize snapshot store")
		assert.Nil(t, Manager.GetQueryStore())
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitCaching(schema.SQLiteBackend, ":memory:", "", ""))

	const numGoroutines = 10
	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			store := Manager.GetQueryStore()
			if store == nil {
				t.Errorf("Goroutine %d: GetQueryStore returned nil", id)
				return
			}
			if err := store.Set("concurrent_key", []byte("value"), 1, int64(1000+id)); err != nil {
				t.Errorf("Goroutine %d: Set failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	_, version, _, err := Manager.GetQueryStore().Get("concurrent_key")
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewCacheStoreManager(t *testing.T) {
	store := NewMemoryStore()
	mgr := NewCacheStoreManager(store, nil)
	assert.Same(t, store, mgr.GetQueryStore())
	assert.Nil(t, mgr.GetSnapshotStore())
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"valid simple name", "snowdash_query_cache", false},
		{"valid name with numbers", "cache_123", false},
		{"valid name starting with underscore", "_cache", false},
		{"valid mixed case", "QueryCache_1", false},
		{"empty name", "", true},
		{"starts with number", "1cache", true},
		{"contains space", "query cache", true},
		{"sql injection", "cache; DROP TABLE users", true},
		{"contains dash", "query-cache", true},
		{"too long", "a123456789012345678901234567890123456789012345678901234567890123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
	}{
		{schema.SQLiteBackend, `"cache"`},
		{schema.MySQLBackend, "`cache`"},
		{schema.PostgreSQLBackend, `"cache"`},
		{schema.NoneBackend, `"cache"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName("cache", tt.backend))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?", placeholders(schema.MySQLBackend, 1))
	assert.Equal(t, "$1, $2, $3, $4", placeholders(schema.PostgreSQLBackend, 4))
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "sqlite", false},
		{schema.MySQLBackend, "mysql", false},
		{schema.PostgreSQLBackend, "pgx", false},
		{schema.MemoryBackend, "", true},
		{schema.NoneBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			got, err := driverFor(tt.backend)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetUpsertQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains string
	}{
		{schema.SQLiteBackend, "INSERT OR REPLACE"},
		{schema.MySQLBackend, "ON DUPLICATE KEY UPDATE"},
		{schema.PostgreSQLBackend, "ON CONFLICT (cache_key) DO UPDATE"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			store := &CacheStoreImpl{tableName: "cache", backend: tt.backend}
			assert.Contains(t, store.getUpsertQuery(), tt.contains)
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains []string
	}{
		{schema.SQLiteBackend, []string{`"cache"`, "BLOB"}},
		{schema.MySQLBackend, []string{"`cache`", "LONGBLOB", "VARCHAR(64)"}},
		{schema.PostgreSQLBackend, []string{`"cache"`, "BYTEA"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			query := getCreateTableQuery("cache", tt.backend)
			assert.Contains(t, query, "CREATE TABLE IF NOT EXISTS")
			for _, want := range tt.contains {
				assert.Contains(t, query, want)
			}
		})
	}
}

func TestSQLiteBackendOperations(t *testing.T) {
	t.Run("set and get operations", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("test_key", []byte("test_value_data"), 1, 1234567890))

		value, version, timestamp, err := store.Get("test_key")
		require.NoError(t, err)
		assert.Equal(t, "test_value_data", string(value))
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(1234567890), timestamp)
	})

	t.Run("upsert behavior", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Set("upsert_key", []byte("initial_value"), 1, 1000))
		require.NoError(t, store.Set("upsert_key", []byte("updated_value"), 2, 2000))

		value, version, timestamp, err := store.Get("upsert_key")
		require.NoError(t, err)
		assert.Equal(t, "updated_value", string(value))
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(2000), timestamp)
	})

	t.Run("get non-existent key", func(t *testing.T) {
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		_, _, _, err = store.Get("non_existent_key")
		assert.Equal(t, sql.ErrNoRows, err)
	})

	t.Run("file backed store survives reopen", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore("test_table", schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Set("k", []byte("v"), 1, 42))
		require.NoError(t, store.Close())

		reopened, err := NewCacheStore("test_table", schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		defer func() { _ = reopened.Close() }()
		value, _, ts, err := reopened.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", string(value))
		assert.Equal(t, int64(42), ts)
	})
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err, "Expected error for invalid table name")

	_, err = NewCacheStore("cache", "redis", "")
	assert.ErrorContains(t, err, "unsupported cache backend")
}

func TestNoneBackendOperations(t *testing.T) {
	store, err := NewCacheStore("test_table", schema.NoneBackend, "")
	require.NoError(t, err)

	_, _, _, err = store.Get("test_key")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, store.Set("test_key", []byte("test_value"), 1, 123456789))

	// Set is a no-op
	_, _, _, err = store.Get("test_key")
	assert.Error(t, err)

	assert.NoError(t, store.Close())
}

func TestCacheStoreGetStatus(t *testing.T) {
	t.Run("SQLite backend with data", func(t *testing.T) {
		store, err := NewCacheStore("test_status_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		for _, data := range []struct {
			key string
			ts  int64
		}{{"key1", 1000}, {"key2", 2000}, {"key3", 1500}} {
			require.NoError(t, store.Set(data.key, []byte("value"), 1, data.ts))
		}

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 3, status.TotalEntries)
		assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("SQLite backend empty", func(t *testing.T) {
		store, err := NewCacheStore("test_empty_table", schema.SQLiteBackend, ":memory:")
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, 0, status.TotalEntries)
		assert.True(t, status.LastEntryTime.IsZero())
		assert.Equal(t, int64(0), status.TableSizeBytes)
	})

	t.Run("None backend", func(t *testing.T) {
		store, err := NewCacheStore("test_none", schema.NoneBackend, "")
		require.NoError(t, err)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "none", status.Backend)
		assert.False(t, status.Connected)
	})
}

func TestClearCache(t *testing.T) {
	t.Run("SQLite backend", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test_clear.db")
		store, err := NewCacheStore("cache", schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		_, err = os.Stat(dbPath)
		require.NoError(t, err, "Database file should exist before ClearCache")

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))

		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err), "Database file should be removed after ClearCache")
	})

	t.Run("SQLite backend - non-existent file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "non_existent.db")
		assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("memory and none are no-ops", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.MemoryBackend, "", ""))
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("empty dbFilePath for SQLite", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("unsupported", "", ""))
	})
}

func TestClearSnapshots(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	store, err := NewSnapshotStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearSnapshots(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearSnapshots(schema.NoneBackend, "", ""))
	assert.Error(t, ClearSnapshots(schema.MemoryBackend, "", ""), "Snapshots never use memory")
}

func TestOpenDBConnectionError(t *testing.T) {
	// Unreachable host so ping fails fast; only the error path is exercised
	_, err := openDB(schema.MySQLBackend, "user:pass@tcp(127.0.0.1:1)/db", "")
	assert.ErrorContains(t, err, "user:password@tcp(host:port)/dbname")
}

func TestTimeScanner(t *testing.T) {
	ref := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		src     any
		want    time.Time
		wantErr bool
	}{
		{"native", ref, ref, false},
		{"rfc3339 string", ref.Format(time.RFC3339Nano), ref, false},
		{"bytes", []byte("2024-03-05 10:30:00"), ref, false},
		{"date only", "2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), false},
		{"nil", nil, time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, true},
		{"wrong type", 42, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts timeScanner
			err := ts.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.t), "got %v want %v", ts.t, tt.want)
		})
	}
}
