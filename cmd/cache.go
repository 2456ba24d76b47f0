package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/iocache"
	"github.com/huangsam/snowdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be memory, sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize caching with the loaded config (no snapshot tracking for cache commands)
	if err := iocache.InitCaching(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// sqliteFilePath returns the SQLite file behind a store, preferring an explicit connection string.
func sqliteFilePath(backend schema.DatabaseBackend, connStr, defaultPath string) string {
	if backend == schema.SQLiteBackend && connStr != "" {
		return connStr
	}
	return defaultPath
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by the dashboard commands. This avoids warehouse
// validation for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the warehouse query cache",
	Long: `Manage the cache that keeps warehouse query results fresh for --cache-ttl.

Every warehouse query is cached under a key built from the query name and its
parameters. Entries older than the TTL (10 minutes by default) are refetched.

Supported backends: memory (default), SQLite, MySQL, PostgreSQL, or none

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status of a shared SQLite cache
  snowdash cache status --cache-backend sqlite

  # Force fresh warehouse queries on the next run
  snowdash cache clear --cache-backend sqlite`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached query results",
	Long: `Delete all cached query results from the configured backend.

Use this when:
- Warehouse data was backfilled and the dashboard should reflect it now
- Cache may be stale or corrupted

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For memory/none: Nothing to clear

Examples:
  # Clear the SQLite cache
  snowdash cache clear --cache-backend sqlite

  # Clear MySQL cache (set connection string via env variable)
  SNOWDASH_CACHE_BACKEND=mysql SNOWDASH_CACHE_DB_CONNECT="..." snowdash cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release our own handle before the file or table goes away
		iocache.CloseCaching()
		path := sqliteFilePath(cfg.CacheBackend, cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cfg.CacheBackend, path, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the query cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache size

Examples:
  # Check cache status
  snowdash cache status --cache-backend sqlite`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetQueryStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("cache backend %q is not initialized", cfg.CacheBackend))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
