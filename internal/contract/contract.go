// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/snowdash/schema"
)

// Warehouse defines the typed queries snowdash issues against the analytics warehouse.
// This allows the dashboard logic to be tested without a live warehouse.
type Warehouse interface {
	// Trends returns the week-over-week trend rows.
	Trends(ctx context.Context) ([]schema.TrendMetric, error)

	// Efficiency returns per-warehouse efficiency scores over the lookback window.
	Efficiency(ctx context.Context, lookbackDays int) ([]schema.EfficiencyRecord, error)

	// Anomalies returns the days whose spend exceeds the z-score threshold.
	Anomalies(ctx context.Context, lookbackDays int, threshold float64) ([]schema.AnomalyRecord, error)

	// DailyCredits returns credits consumed per calendar day, oldest first.
	DailyCredits(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error)

	// DailyQueries returns queries executed per calendar day, oldest first.
	DailyQueries(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error)

	// Close closes the underlying connection.
	Close() error
}

// SnapshotStore defines the interface for recording dashboard history.
type SnapshotStore interface {
	// RecordSnapshot stores a dashboard render and returns its unique ID
	RecordSnapshot(snap schema.Snapshot) (int64, error)

	// GetStatus returns status information about the snapshot store
	GetStatus() (schema.SnapshotStatus, error)

	// GetAllSnapshotRuns returns every recorded run, oldest first
	GetAllSnapshotRuns() ([]schema.SnapshotRunRecord, error)

	// GetAllSnapshotAnomalies returns every recorded anomaly row
	GetAllSnapshotAnomalies() ([]schema.SnapshotAnomalyRecord, error)

	// GetAllSnapshotEfficiency returns every recorded efficiency row
	GetAllSnapshotEfficiency() ([]schema.SnapshotEfficiencyRecord, error)

	// Close closes the underlying connection
	Close() error
}

// OutputWriter renders dashboard models in the configured output mode.
// This allows the executors to be tested without writing to stdout.
type OutputWriter interface {
	// WriteDashboard writes the complete dashboard.
	WriteDashboard(dashboard schema.Dashboard, cfg *Config, duration time.Duration) error

	// WriteTrends writes the KPI cards and trend insights.
	WriteTrends(section schema.TrendsSection, cfg *Config, duration time.Duration) error

	// WriteEfficiency writes the efficiency summary, cards and table.
	WriteEfficiency(section schema.EfficiencySection, cfg *Config, duration time.Duration) error

	// WriteAnomalies writes the annotated series and ranked anomalies.
	WriteAnomalies(section schema.AnomalySection, cfg *Config, duration time.Duration) error
}
