package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/iocache"
	"github.com/huangsam/snowdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotBackendFromViper reads and validates the snapshot backend settings.
// An empty backend means snapshots are disabled.
func snapshotBackendFromViper() (schema.DatabaseBackend, string, error) {
	backendStr := viper.GetString("snapshot-backend")
	connStr := viper.GetString("snapshot-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok || backend == schema.MemoryBackend {
		return "", "", fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// snapshotSetup loads minimal configuration needed for snapshot operations.
// This is used by commands that need snapshot access without full shared setup.
func snapshotSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := snapshotBackendFromViper()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no query cache for snapshot commands)
	if err := iocache.InitCaching("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize snapshots: %w", err)
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// snapshotMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func snapshotMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend, connStr, err := snapshotBackendFromViper()
	if err != nil {
		return err
	}
	if backend == schema.NoneBackend {
		return errors.New("migrations need a snapshot backend (set --snapshot-backend)")
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetSnapshotDBFilePath()
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr

	return nil
}

// snapshotMigrateSetupWrapper wraps snapshotMigrateSetup to provide PreRunE for migrate command.
func snapshotMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotMigrateSetup()
}

// snapshotCmd focused on dashboard history.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage recorded dashboard snapshots and exports",
	Long: `Manage the history of rendered dashboards.

When --snapshot-backend is set, every dashboard render records:
- Run metadata (timestamp, parameters, duration, headline figures)
- The anomalies shown on the chart
- The efficiency grade of every warehouse

This makes it possible to see how spend and efficiency evolve across weeks.

Supported backends: SQLite, MySQL, PostgreSQL, or none (disabled)

Subcommands:
  status  - Show snapshot statistics
  export  - Export history to Parquet for analytics
  clear   - Remove all snapshots
  migrate - Run database schema migrations

Examples:
  # Check snapshot status
  snowdash snapshot status --snapshot-backend sqlite

  # Export for analysis in pandas/DuckDB
  snowdash snapshot export --snapshot-backend sqlite --output-file history`,
}

// snapshotClearCmd clears the snapshot history.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded dashboard snapshots",
	Long: `Delete all recorded runs with their anomaly and efficiency rows.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  snowdash snapshot export --snapshot-backend sqlite --output-file backup
  snowdash snapshot clear --snapshot-backend sqlite`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release our own handle before the file or tables go away
		iocache.CloseCaching()
		path := sqliteFilePath(cfg.SnapshotBackend, cfg.SnapshotDBConnect, contract.GetSnapshotDBFilePath())
		if err := iocache.ClearSnapshots(cfg.SnapshotBackend, path, cfg.SnapshotDBConnect); err != nil {
			contract.LogFatal("Failed to clear snapshots", err)
		}
		fmt.Println("Snapshots cleared successfully.")
	},
}

// snapshotStatusCmd shows snapshot status.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show detailed information about recorded dashboard snapshots.

Displays:
- Backend type and connection status
- Total number of recorded runs
- Last and oldest run timestamps
- Anomaly and efficiency row counts

Examples:
  # Check snapshot status
  snowdash snapshot status --snapshot-backend sqlite`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetSnapshotStore()
		if store == nil {
			iocache.PrintSnapshotStatus(os.Stdout, schema.SnapshotStatus{Backend: string(schema.NoneBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		iocache.PrintSnapshotStatus(os.Stdout, status)
	},
}

// snapshotExportCmd exports snapshot history to Parquet files.
var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshot history to Parquet for BI tools and analytics",
	Long: `Export all recorded snapshots to Parquet format for use with analytics tools.

Writes three files next to the --output-file prefix:
- <prefix>.runs.parquet       - one row per dashboard render
- <prefix>.anomalies.parquet  - anomalies shown on each render
- <prefix>.efficiency.parquet - warehouse grades of each render

Requires: --output-file parameter

Examples:
  # Export all data
  snowdash snapshot export --snapshot-backend sqlite --output-file history

  # Use with DuckDB for analysis
  duckdb -c "SELECT run_timestamp, total_credits FROM read_parquet('history.runs.parquet')"`,
	PreRunE: snapshotSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteSnapshotExport(iocache.Manager.GetSnapshotStore(), cfg.OutputFile, os.Stderr); err != nil {
			contract.LogFatal("Failed to export snapshots", err)
		}
	},
}

// snapshotMigrateCmd runs database migrations for the snapshot store.
var snapshotMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  snowdash snapshot migrate --snapshot-backend sqlite

  # Migrate to specific version
  snowdash snapshot migrate --snapshot-backend sqlite --target-version 1

  # Rollback to the initial state
  snowdash snapshot migrate --snapshot-backend sqlite --target-version 0`,
	PreRunE: snapshotMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		result, err := iocache.MigrateSnapshots(cfg.SnapshotBackend, cfg.SnapshotDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(result)
	},
}
