package iocache

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintCacheStatus(t *testing.T) {
	t.Run("disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
		assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())
	})

	t.Run("with entries", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{
			Backend:         "sqlite",
			Connected:       true,
			TotalEntries:    1234,
			LastEntryTime:   time.Now().Add(-time.Minute),
			OldestEntryTime: time.Now().Add(-time.Hour),
			TableSizeBytes:  2048,
		})
		out := buf.String()
		assert.Contains(t, out, "Total Entries: 1,234")
		assert.Contains(t, out, "minute ago")
		assert.Contains(t, out, "hour ago")
		assert.Contains(t, out, "Table Size: 2.0 kB")
	})
}

func TestPrintSnapshotStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintSnapshotStatus(&buf, schema.SnapshotStatus{
		Backend:        "postgresql",
		Connected:      true,
		TotalRuns:      2,
		LastSnapshotID: 7,
		LastRunTime:    time.Now(),
		OldestRunTime:  time.Now().Add(-48 * time.Hour),
		TotalAnomalies: 5,
		TableSizes: map[string]int64{
			snapshotRunsTable:       2,
			snapshotAnomaliesTable:  5,
			snapshotEfficiencyTable: 12000,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Snapshot ID: 7")
	assert.Contains(t, out, "Total Anomalies Recorded: 5")
	assert.Contains(t, out, "snowdash_snapshot_efficiency: 12,000 rows")

	// Tables print in name order
	anomaliesAt := strings.Index(out, snapshotAnomaliesTable)
	runsAt := strings.Index(out, snapshotRunsTable)
	assert.Less(t, anomaliesAt, runsAt)
}
