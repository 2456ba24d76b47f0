package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/parquet"
)

// ErrNoSnapshots is returned when there is nothing to export.
var ErrNoSnapshots = errors.New("no snapshot data found to export")

// ExportPaths returns the Parquet files written for an output prefix.
func ExportPaths(outputFile string) (runs, anomalies, efficiency string) {
	return outputFile + ".runs.parquet", outputFile + ".anomalies.parquet", outputFile + ".efficiency.parquet"
}

// ExecuteSnapshotExport writes the snapshot history of store to three Parquet files.
// Progress is reported on w.
func ExecuteSnapshotExport(store contract.SnapshotStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("snapshot store is not configured (set --snapshot-backend)")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get snapshot status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNoSnapshots
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total snapshots: %d\n", status.TotalRuns)

	runs, err := store.GetAllSnapshotRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshot runs: %w", err)
	}
	anomalies, err := store.GetAllSnapshotAnomalies()
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshot anomalies: %w", err)
	}
	efficiency, err := store.GetAllSnapshotEfficiency()
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshot efficiency: %w", err)
	}

	runsFile, anomaliesFile, efficiencyFile := ExportPaths(outputFile)

	if err := parquet.WriteSnapshotRunsParquet(parquet.ConvertSnapshotRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write snapshot runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d snapshot runs to: %s\n", len(runs), runsFile)

	if err := parquet.WriteSnapshotAnomaliesParquet(parquet.ConvertSnapshotAnomalyRecords(anomalies), anomaliesFile); err != nil {
		return fmt.Errorf("failed to write snapshot anomalies: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d anomaly rows to: %s\n", len(anomalies), anomaliesFile)

	if err := parquet.WriteSnapshotEfficiencyParquet(parquet.ConvertSnapshotEfficiencyRecords(efficiency), efficiencyFile); err != nil {
		return fmt.Errorf("failed to write snapshot efficiency: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d efficiency rows to: %s\n", len(efficiency), efficiencyFile)

	return nil
}
