package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(captured time.Time) schema.Snapshot {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	return schema.Snapshot{
		RunUUID:    uuid.NewString(),
		CapturedAt: captured,
		Params:     schema.DashboardParams{EfficiencyLookbackDays: 7, AnomalyLookbackDays: 30, AnomalyThreshold: 2.0},
		Trends: []schema.TrendMetric{
			{MetricName: schema.TotalCreditsMetric, ThisWeekValue: 1200, ChangePct: 12.5},
			{MetricName: schema.QueryCountMetric, ThisWeekValue: 50000, ChangePct: -3},
		},
		Efficiency: []schema.EfficiencyRecord{
			{WarehouseName: "ETL_WH", QueryCount: 1200, EfficiencyScore: 64, Grade: schema.GradeD,
				CacheScore: 50, SpillScore: 40, ErrorScore: 90, QueueScore: 80, PrimaryIssue: "High spill"},
			{WarehouseName: "BI_WH", QueryCount: 80, EfficiencyScore: 92, Grade: schema.GradeA,
				PrimaryIssue: schema.NoPrimaryIssue},
		},
		Anomalies: []schema.AnomalyRecord{
			{Date: day, Severity: schema.CriticalSeverity, Value: 412.5, BaselineAvg: 120,
				PercentAboveBaseline: 243.75, ZScore: 4.1, TopContributorName: "ETL_WH", TopContributorValue: 300},
			{Date: day.AddDate(0, 0, 2), Severity: schema.LowSeverity, Value: 150, BaselineAvg: 120,
				PercentAboveBaseline: 25, ZScore: 2.1},
		},
	}
}

func newSQLiteSnapshotStore(t *testing.T) *SnapshotStoreImpl {
	t.Helper()
	store, err := NewSnapshotStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*SnapshotStoreImpl)
}

func TestSnapshotStore_NoneBackend(t *testing.T) {
	store, err := NewSnapshotStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.RecordSnapshot(sampleSnapshot(time.Now()))
	assert.NoError(t, err)
	assert.Zero(t, id)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)

	runs, err := store.GetAllSnapshotRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestSnapshotStore_UnsupportedBackend(t *testing.T) {
	_, err := NewSnapshotStore(schema.MemoryBackend, "")
	assert.ErrorContains(t, err, "unsupported snapshot backend")
}

func TestSnapshotStore_SQLite(t *testing.T) {
	store := newSQLiteSnapshotStore(t)
	captured := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	id, err := store.RecordSnapshot(sampleSnapshot(captured))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	runs, err := store.GetAllSnapshotRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].SnapshotID)
	assert.True(t, captured.Equal(runs[0].CapturedAt))
	assert.Equal(t, int32(7), runs[0].EfficiencyLookbackDays)
	assert.Equal(t, int32(30), runs[0].AnomalyLookbackDays)
	assert.Equal(t, 2.0, runs[0].AnomalyThreshold)
	assert.Equal(t, int32(2), runs[0].TrendCount)
	assert.Equal(t, int32(2), runs[0].WarehouseCount)
	assert.Equal(t, int32(2), runs[0].AnomalyCount)
	_, err = uuid.Parse(runs[0].RunUUID)
	assert.NoError(t, err)

	anomalies, err := store.GetAllSnapshotAnomalies()
	require.NoError(t, err)
	require.Len(t, anomalies, 2)
	assert.Equal(t, "CRITICAL", anomalies[0].Severity)
	assert.Equal(t, "2024-03-05", schema.DateKey(anomalies[0].UsageDate))
	require.NotNil(t, anomalies[0].TopWarehouse)
	assert.Equal(t, "ETL_WH", *anomalies[0].TopWarehouse)
	assert.Nil(t, anomalies[1].TopWarehouse, "Empty contributor should be stored as NULL")
	assert.Equal(t, 4.1, anomalies[0].ZScore)

	efficiency, err := store.GetAllSnapshotEfficiency()
	require.NoError(t, err)
	require.Len(t, efficiency, 2)
	// Ordered by warehouse name within a snapshot
	assert.Equal(t, "BI_WH", efficiency[0].WarehouseName)
	assert.Nil(t, efficiency[0].PrimaryIssue, "None should be stored as NULL")
	assert.Equal(t, "ETL_WH", efficiency[1].WarehouseName)
	require.NotNil(t, efficiency[1].PrimaryIssue)
	assert.Equal(t, "High spill", *efficiency[1].PrimaryIssue)
	assert.Equal(t, "D", efficiency[1].Grade)
	assert.Equal(t, int64(1200), efficiency[1].QueryCount)
}

func TestSnapshotStore_MultipleRuns(t *testing.T) {
	store := newSQLiteSnapshotStore(t)
	first := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	for i := range 3 {
		id, err := store.RecordSnapshot(sampleSnapshot(first.Add(time.Duration(i) * time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), id)
	}

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, int64(3), status.LastSnapshotID)
	assert.True(t, first.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 6, status.TotalAnomalies)
	assert.Equal(t, int64(3), status.TableSizes[snapshotRunsTable])
	assert.Equal(t, int64(6), status.TableSizes[snapshotAnomaliesTable])
	assert.Equal(t, int64(6), status.TableSizes[snapshotEfficiencyTable])
}

func TestSnapshotStore_EmptySnapshot(t *testing.T) {
	store := newSQLiteSnapshotStore(t)

	id, err := store.RecordSnapshot(schema.Snapshot{RunUUID: uuid.NewString(), CapturedAt: time.Now()})
	require.NoError(t, err)
	assert.Positive(t, id)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Zero(t, status.TotalAnomalies)
}

func TestSnapshotStore_DuplicateUUIDRollsBack(t *testing.T) {
	store := newSQLiteSnapshotStore(t)
	snap := sampleSnapshot(time.Now())

	_, err := store.RecordSnapshot(snap)
	require.NoError(t, err)
	_, err = store.RecordSnapshot(snap)
	require.Error(t, err, "run_uuid is unique")

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, int64(2), status.TableSizes[snapshotAnomaliesTable], "Failed snapshot leaves no rows")
}

func TestSnapshotStore_EmptyStatus(t *testing.T) {
	store := newSQLiteSnapshotStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalRuns)
	assert.True(t, status.LastRunTime.IsZero())
	assert.Len(t, status.TableSizes, 3)
}

func TestSnapshotSchema(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		t.Run(string(backend), func(t *testing.T) {
			stmts := snapshotSchema(backend)
			require.Len(t, stmts, len(snapshotTables))
			for i, table := range snapshotTables {
				assert.Contains(t, stmts[i], quoteTableName(table, backend))
			}
		})
	}
}
