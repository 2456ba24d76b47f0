package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
)

// Table names for snapshot history.
const (
	snapshotRunsTable       = "snowdash_snapshot_runs"
	snapshotAnomaliesTable  = "snowdash_snapshot_anomalies"
	snapshotEfficiencyTable = "snowdash_snapshot_efficiency"
)

// snapshotTables lists the snapshot tables in creation order.
var snapshotTables = []string{snapshotRunsTable, snapshotAnomaliesTable, snapshotEfficiencyTable}

// SnapshotStoreImpl implements the SnapshotStore interface.
type SnapshotStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore creates a new SnapshotStore with the specified backend.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &SnapshotStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s", backend)
	}

	db, err := openDB(backend, connStr, GetSnapshotDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	for _, stmt := range snapshotSchema(backend) {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create snapshot tables: %w", err)
		}
	}

	return &SnapshotStoreImpl{db: db, backend: backend}, nil
}

// snapshotSchema returns the CREATE TABLE statements for the backend.
// The embedded migrations carry the same definitions.
func snapshotSchema(backend schema.DatabaseBackend) []string {
	runs := quoteTableName(snapshotRunsTable, backend)
	anomalies := quoteTableName(snapshotAnomaliesTable, backend)
	efficiency := quoteTableName(snapshotEfficiencyTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL UNIQUE,
				captured_at DATETIME(6) NOT NULL,
				efficiency_lookback_days INT NOT NULL,
				anomaly_lookback_days INT NOT NULL,
				anomaly_threshold DOUBLE NOT NULL,
				trend_count INT NOT NULL,
				warehouse_count INT NOT NULL,
				anomaly_count INT NOT NULL
			)`, runs),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				usage_date DATE NOT NULL,
				severity VARCHAR(16) NOT NULL,
				daily_credits DOUBLE NOT NULL,
				baseline_avg DOUBLE NOT NULL,
				percent_above_baseline DOUBLE NOT NULL,
				z_score DOUBLE NOT NULL,
				top_warehouse VARCHAR(255),
				top_warehouse_credits DOUBLE NOT NULL,
				INDEX idx_snapshot_anomalies (snapshot_id)
			)`, anomalies),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				warehouse_name VARCHAR(255) NOT NULL,
				query_count BIGINT NOT NULL,
				efficiency_score DOUBLE NOT NULL,
				grade VARCHAR(8) NOT NULL,
				cache_score DOUBLE NOT NULL,
				spill_score DOUBLE NOT NULL,
				error_score DOUBLE NOT NULL,
				queue_score DOUBLE NOT NULL,
				primary_issue VARCHAR(255),
				INDEX idx_snapshot_efficiency (snapshot_id)
			)`, efficiency),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL UNIQUE,
				captured_at TIMESTAMPTZ NOT NULL,
				efficiency_lookback_days INT NOT NULL,
				anomaly_lookback_days INT NOT NULL,
				anomaly_threshold DOUBLE PRECISION NOT NULL,
				trend_count INT NOT NULL,
				warehouse_count INT NOT NULL,
				anomaly_count INT NOT NULL
			)`, runs),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				usage_date DATE NOT NULL,
				severity TEXT NOT NULL,
				daily_credits DOUBLE PRECISION NOT NULL,
				baseline_avg DOUBLE PRECISION NOT NULL,
				percent_above_baseline DOUBLE PRECISION NOT NULL,
				z_score DOUBLE PRECISION NOT NULL,
				top_warehouse TEXT,
				top_warehouse_credits DOUBLE PRECISION NOT NULL
			)`, anomalies),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id BIGINT NOT NULL,
				warehouse_name TEXT NOT NULL,
				query_count BIGINT NOT NULL,
				efficiency_score DOUBLE PRECISION NOT NULL,
				grade TEXT NOT NULL,
				cache_score DOUBLE PRECISION NOT NULL,
				spill_score DOUBLE PRECISION NOT NULL,
				error_score DOUBLE PRECISION NOT NULL,
				queue_score DOUBLE PRECISION NOT NULL,
				primary_issue TEXT
			)`, efficiency),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL UNIQUE,
				captured_at TEXT NOT NULL,
				efficiency_lookback_days INTEGER NOT NULL,
				anomaly_lookback_days INTEGER NOT NULL,
				anomaly_threshold REAL NOT NULL,
				trend_count INTEGER NOT NULL,
				warehouse_count INTEGER NOT NULL,
				anomaly_count INTEGER NOT NULL
			)`, runs),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER NOT NULL,
				usage_date TEXT NOT NULL,
				severity TEXT NOT NULL,
				daily_credits REAL NOT NULL,
				baseline_avg REAL NOT NULL,
				percent_above_baseline REAL NOT NULL,
				z_score REAL NOT NULL,
				top_warehouse TEXT,
				top_warehouse_credits REAL NOT NULL
			)`, anomalies),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				snapshot_id INTEGER NOT NULL,
				warehouse_name TEXT NOT NULL,
				query_count INTEGER NOT NULL,
				efficiency_score REAL NOT NULL,
				grade TEXT NOT NULL,
				cache_score REAL NOT NULL,
				spill_score REAL NOT NULL,
				error_score REAL NOT NULL,
				queue_score REAL NOT NULL,
				primary_issue TEXT
			)`, efficiency),
		}
	}
}

// RecordSnapshot stores a dashboard render and its rows in one transaction.
func (ss *SnapshotStoreImpl) RecordSnapshot(snap schema.Snapshot) (int64, error) {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return 0, nil
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshotID, err := ss.insertRun(tx, snap)
	if err != nil {
		return 0, err
	}

	anomalyQuery := fmt.Sprintf(`INSERT INTO %s (snapshot_id, usage_date, severity, daily_credits, baseline_avg,
		percent_above_baseline, z_score, top_warehouse, top_warehouse_credits) VALUES (%s)`,
		quoteTableName(snapshotAnomaliesTable, ss.backend), placeholders(ss.backend, 9))
	for _, a := range snap.Anomalies {
		if _, err := tx.Exec(anomalyQuery,
			snapshotID, ss.formatDate(a.Date), string(a.Severity), a.Value, a.BaselineAvg,
			a.PercentAboveBaseline, a.ZScore, nullableString(a.TopContributorName), a.TopContributorValue,
		); err != nil {
			return 0, fmt.Errorf("failed to insert snapshot anomaly: %w", err)
		}
	}

	efficiencyQuery := fmt.Sprintf(`INSERT INTO %s (snapshot_id, warehouse_name, query_count, efficiency_score, grade,
		cache_score, spill_score, error_score, queue_score, primary_issue) VALUES (%s)`,
		quoteTableName(snapshotEfficiencyTable, ss.backend), placeholders(ss.backend, 10))
	for _, e := range snap.Efficiency {
		issue := e.PrimaryIssue
		if issue == schema.NoPrimaryIssue {
			issue = ""
		}
		if _, err := tx.Exec(efficiencyQuery,
			snapshotID, e.WarehouseName, e.QueryCount, e.EfficiencyScore, string(e.Grade),
			e.CacheScore, e.SpillScore, e.ErrorScore, e.QueueScore, nullableString(issue),
		); err != nil {
			return 0, fmt.Errorf("failed to insert snapshot efficiency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshotID, nil
}

// insertRun inserts the run row and returns its generated ID.
func (ss *SnapshotStoreImpl) insertRun(tx *sql.Tx, snap schema.Snapshot) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, captured_at, efficiency_lookback_days, anomaly_lookback_days,
		anomaly_threshold, trend_count, warehouse_count, anomaly_count) VALUES (%s)`,
		quoteTableName(snapshotRunsTable, ss.backend), placeholders(ss.backend, 8))
	args := []any{
		snap.RunUUID, formatTime(snap.CapturedAt, ss.backend),
		snap.Params.EfficiencyLookbackDays, snap.Params.AnomalyLookbackDays, snap.Params.AnomalyThreshold,
		len(snap.Trends), len(snap.Efficiency), len(snap.Anomalies),
	}

	var snapshotID int64
	switch ss.backend {
	case schema.PostgreSQLBackend:
		if err := tx.QueryRow(query+" RETURNING snapshot_id", args...).Scan(&snapshotID); err != nil {
			return 0, fmt.Errorf("failed to insert snapshot run: %w", err)
		}
	default: // SQLite and MySQL
		result, err := tx.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert snapshot run: %w", err)
		}
		if snapshotID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read snapshot id: %w", err)
		}
	}
	return snapshotID, nil
}

// Close closes the underlying connection.
func (ss *SnapshotStoreImpl) Close() error {
	if ss.db != nil {
		return ss.db.Close()
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (ss *SnapshotStoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:    string(ss.backend),
		Connected:  ss.db != nil,
		TableSizes: make(map[string]int64),
	}

	if ss.backend == schema.NoneBackend || ss.db == nil {
		return status, nil
	}

	runs := quoteTableName(snapshotRunsTable, ss.backend)
	if err := ss.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeScanner
		lastQuery := fmt.Sprintf("SELECT snapshot_id, captured_at FROM %s ORDER BY snapshot_id DESC LIMIT 1", runs)
		if err := ss.db.QueryRow(lastQuery).Scan(&status.LastSnapshotID, &last); err != nil {
			return status, fmt.Errorf("failed to get last snapshot: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT captured_at FROM %s ORDER BY snapshot_id ASC LIMIT 1", runs)
		if err := ss.db.QueryRow(oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest snapshot: %w", err)
		}
		status.LastRunTime = last.t
		status.OldestRunTime = oldest.t

		anomaliesQuery := fmt.Sprintf("SELECT COALESCE(SUM(anomaly_count), 0) FROM %s", runs)
		if err := ss.db.QueryRow(anomaliesQuery).Scan(&status.TotalAnomalies); err != nil {
			return status, fmt.Errorf("failed to get total anomalies: %w", err)
		}
	}

	// Get table sizes
	for _, table := range snapshotTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, ss.backend))
		if err := ss.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllSnapshotRuns retrieves all snapshot runs, oldest first.
func (ss *SnapshotStoreImpl) GetAllSnapshotRuns() ([]schema.SnapshotRunRecord, error) {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT snapshot_id, run_uuid, captured_at, efficiency_lookback_days, anomaly_lookback_days,
		anomaly_threshold, trend_count, warehouse_count, anomaly_count FROM %s ORDER BY snapshot_id`,
		quoteTableName(snapshotRunsTable, ss.backend))
	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRunRecord
	for rows.Next() {
		var record schema.SnapshotRunRecord
		var captured timeScanner
		if err := rows.Scan(&record.SnapshotID, &record.RunUUID, &captured, &record.EfficiencyLookbackDays,
			&record.AnomalyLookbackDays, &record.AnomalyThreshold, &record.TrendCount,
			&record.WarehouseCount, &record.AnomalyCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot run: %w", err)
		}
		record.CapturedAt = captured.t
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot runs: %w", err)
	}
	return results, nil
}

// GetAllSnapshotAnomalies retrieves every recorded anomaly row.
func (ss *SnapshotStoreImpl) GetAllSnapshotAnomalies() ([]schema.SnapshotAnomalyRecord, error) {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT snapshot_id, usage_date, severity, daily_credits, baseline_avg,
		percent_above_baseline, z_score, top_warehouse, top_warehouse_credits
		FROM %s ORDER BY snapshot_id, usage_date`, quoteTableName(snapshotAnomaliesTable, ss.backend))
	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot anomalies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotAnomalyRecord
	for rows.Next() {
		var record schema.SnapshotAnomalyRecord
		var usage timeScanner
		if err := rows.Scan(&record.SnapshotID, &usage, &record.Severity, &record.DailyCredits,
			&record.BaselineAvg, &record.PercentAboveBaseline, &record.ZScore,
			&record.TopWarehouse, &record.TopWarehouseCredits); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot anomaly: %w", err)
		}
		record.UsageDate = schema.CivilDate(usage.t)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot anomalies: %w", err)
	}
	return results, nil
}

// GetAllSnapshotEfficiency retrieves every recorded efficiency row.
func (ss *SnapshotStoreImpl) GetAllSnapshotEfficiency() ([]schema.SnapshotEfficiencyRecord, error) {
	// Skip for NoneBackend
	if ss.backend == schema.NoneBackend || ss.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT snapshot_id, warehouse_name, query_count, efficiency_score, grade,
		cache_score, spill_score, error_score, queue_score, primary_issue
		FROM %s ORDER BY snapshot_id, warehouse_name`, quoteTableName(snapshotEfficiencyTable, ss.backend))
	rows, err := ss.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot efficiency: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotEfficiencyRecord
	for rows.Next() {
		var record schema.SnapshotEfficiencyRecord
		if err := rows.Scan(&record.SnapshotID, &record.WarehouseName, &record.QueryCount,
			&record.EfficiencyScore, &record.Grade, &record.CacheScore, &record.SpillScore,
			&record.ErrorScore, &record.QueueScore, &record.PrimaryIssue); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot efficiency: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot efficiency: %w", err)
	}
	return results, nil
}

// formatDate stores calendar dates as text in SQLite and natively elsewhere.
func (ss *SnapshotStoreImpl) formatDate(t time.Time) any {
	if ss.backend == schema.SQLiteBackend {
		return schema.DateKey(t)
	}
	return schema.CivilDate(t)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
