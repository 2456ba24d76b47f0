package iocache

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/snowdash/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus prints query cache status information.
func PrintCacheStatus(w io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(w, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %s\n", humanize.Comma(int64(status.TotalEntries)))
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(w, "Last Entry: %s\n", describeTime(status.LastEntryTime))
		_, _ = fmt.Fprintf(w, "Oldest Entry: %s\n", describeTime(status.OldestEntryTime))
	}
	_, _ = fmt.Fprintf(w, "Table Size: %s\n", humanize.Bytes(uint64(max(status.TableSizeBytes, 0))))
}

// PrintSnapshotStatus prints snapshot store status information.
func PrintSnapshotStatus(w io.Writer, status schema.SnapshotStatus) {
	_, _ = fmt.Fprintf(w, "Snapshot Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Snapshots: %s\n", humanize.Comma(int64(status.TotalRuns)))
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Snapshot ID: %d\n", status.LastSnapshotID)
		_, _ = fmt.Fprintf(w, "Last Snapshot: %s\n", describeTime(status.LastRunTime))
		_, _ = fmt.Fprintf(w, "Oldest Snapshot: %s\n", describeTime(status.OldestRunTime))
		_, _ = fmt.Fprintf(w, "Total Anomalies Recorded: %s\n", humanize.Comma(int64(status.TotalAnomalies)))
	}
	if len(status.TableSizes) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %s rows\n", table, humanize.Comma(status.TableSizes[table]))
	}
}

// describeTime renders an absolute local timestamp with its relative age.
func describeTime(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format(statusTimeLayout), humanize.Time(t))
}
