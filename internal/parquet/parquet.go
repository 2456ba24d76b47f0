// Package parquet provides data structures and functions for exporting snowdash
// snapshot history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/snowdash/schema"
	"github.com/parquet-go/parquet-go"
)

// SnapshotRun represents a single recorded dashboard render.
// This struct maps to the snowdash_snapshot_runs database table.
type SnapshotRun struct {
	// SnapshotID is the unique identifier for this snapshot
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	// RunUUID is the globally unique identifier of the render
	RunUUID string `parquet:"run_uuid,snappy"`

	// CapturedAt is when the dashboard was rendered (TIMESTAMP with nanosecond precision)
	CapturedAt time.Time `parquet:"captured_at,snappy"`

	EfficiencyLookbackDays int32   `parquet:"efficiency_lookback_days,snappy"`
	AnomalyLookbackDays    int32   `parquet:"anomaly_lookback_days,snappy"`
	AnomalyThreshold       float64 `parquet:"anomaly_threshold,snappy"`

	// Row counts of each section at capture time
	TrendCount     int32 `parquet:"trend_count,snappy"`
	WarehouseCount int32 `parquet:"warehouse_count,snappy"`
	AnomalyCount   int32 `parquet:"anomaly_count,snappy"`
}

// SnapshotAnomaly represents one anomalous day captured in a snapshot.
// This struct maps to the snowdash_snapshot_anomalies database table.
type SnapshotAnomaly struct {
	SnapshotID int64 `parquet:"snapshot_id,snappy"`

	// UsageDate is the calendar day at midnight UTC
	UsageDate time.Time `parquet:"usage_date,snappy"`

	Severity             string  `parquet:"severity,dict,snappy"`
	DailyCredits         float64 `parquet:"daily_credits,snappy"`
	BaselineAvg          float64 `parquet:"baseline_avg,snappy"`
	PercentAboveBaseline float64 `parquet:"percent_above_baseline,snappy"`
	ZScore               float64 `parquet:"z_score,snappy"`

	// TopWarehouse is the largest consumer of the day (nullable)
	TopWarehouse        *string `parquet:"top_warehouse,optional,snappy"`
	TopWarehouseCredits float64 `parquet:"top_warehouse_credits,snappy"`
}

// SnapshotEfficiency represents one warehouse score captured in a snapshot.
// This struct maps to the snowdash_snapshot_efficiency database table.
type SnapshotEfficiency struct {
	SnapshotID      int64   `parquet:"snapshot_id,snappy"`
	WarehouseName   string  `parquet:"warehouse_name,snappy"`
	QueryCount      int64   `parquet:"query_count,snappy"`
	EfficiencyScore float64 `parquet:"efficiency_score,snappy"`
	Grade           string  `parquet:"grade,dict,snappy"`
	CacheScore      float64 `parquet:"cache_score,snappy"`
	SpillScore      float64 `parquet:"spill_score,snappy"`
	ErrorScore      float64 `parquet:"error_score,snappy"`
	QueueScore      float64 `parquet:"queue_score,snappy"`

	// PrimaryIssue is empty for healthy warehouses (nullable)
	PrimaryIssue *string `parquet:"primary_issue,optional,snappy"`
}

// writeParquet writes rows to a Parquet file whose schema is inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteSnapshotRunsParquet writes snapshot runs to a Parquet file.
func WriteSnapshotRunsParquet(data []SnapshotRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSnapshotAnomaliesParquet writes snapshot anomalies to a Parquet file.
func WriteSnapshotAnomaliesParquet(data []SnapshotAnomaly, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSnapshotEfficiencyParquet writes snapshot efficiency rows to a Parquet file.
func WriteSnapshotEfficiencyParquet(data []SnapshotEfficiency, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertSnapshotRunRecords converts store rows for Parquet export.
func ConvertSnapshotRunRecords(records []schema.SnapshotRunRecord) []SnapshotRun {
	result := make([]SnapshotRun, len(records))
	for i, record := range records {
		result[i] = SnapshotRun{
			SnapshotID:             record.SnapshotID,
			RunUUID:                record.RunUUID,
			CapturedAt:             record.CapturedAt,
			EfficiencyLookbackDays: record.EfficiencyLookbackDays,
			AnomalyLookbackDays:    record.AnomalyLookbackDays,
			AnomalyThreshold:       record.AnomalyThreshold,
			TrendCount:             record.TrendCount,
			WarehouseCount:         record.WarehouseCount,
			AnomalyCount:           record.AnomalyCount,
		}
	}
	return result
}

// ConvertSnapshotAnomalyRecords converts store rows for Parquet export.
func ConvertSnapshotAnomalyRecords(records []schema.SnapshotAnomalyRecord) []SnapshotAnomaly {
	result := make([]SnapshotAnomaly, len(records))
	for i, record := range records {
		result[i] = SnapshotAnomaly{
			SnapshotID:           record.SnapshotID,
			UsageDate:            record.UsageDate,
			Severity:             record.Severity,
			DailyCredits:         record.DailyCredits,
			BaselineAvg:          record.BaselineAvg,
			PercentAboveBaseline: record.PercentAboveBaseline,
			ZScore:               record.ZScore,
			TopWarehouse:         record.TopWarehouse,
			TopWarehouseCredits:  record.TopWarehouseCredits,
		}
	}
	return result
}

// ConvertSnapshotEfficiencyRecords converts store rows for Parquet export.
func ConvertSnapshotEfficiencyRecords(records []schema.SnapshotEfficiencyRecord) []SnapshotEfficiency {
	result := make([]SnapshotEfficiency, len(records))
	for i, record := range records {
		result[i] = SnapshotEfficiency{
			SnapshotID:      record.SnapshotID,
			WarehouseName:   record.WarehouseName,
			QueryCount:      record.QueryCount,
			EfficiencyScore: record.EfficiencyScore,
			Grade:           record.Grade,
			CacheScore:      record.CacheScore,
			SpillScore:      record.SpillScore,
			ErrorScore:      record.ErrorScore,
			QueueScore:      record.QueueScore,
			PrimaryIssue:    record.PrimaryIssue,
		}
	}
	return result
}
