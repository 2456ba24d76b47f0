package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// SnapshotStatus represents the status of the snapshot store.
type SnapshotStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastSnapshotID int64            `json:"last_snapshot_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalAnomalies int              `json:"total_anomalies"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// Snapshot is a dashboard render captured for history.
type Snapshot struct {
	RunUUID    string
	CapturedAt time.Time
	Params     DashboardParams
	Trends     []TrendMetric
	Efficiency []EfficiencyRecord
	Anomalies  []AnomalyRecord
}

// SnapshotRunRecord represents a row from the snowdash_snapshot_runs table.
type SnapshotRunRecord struct {
	SnapshotID             int64
	RunUUID                string
	CapturedAt             time.Time
	EfficiencyLookbackDays int32
	AnomalyLookbackDays    int32
	AnomalyThreshold       float64
	TrendCount             int32
	WarehouseCount         int32
	AnomalyCount           int32
}

// SnapshotAnomalyRecord represents a row from the snowdash_snapshot_anomalies table.
type SnapshotAnomalyRecord struct {
	SnapshotID           int64
	UsageDate            time.Time
	Severity             string
	DailyCredits         float64
	BaselineAvg          float64
	PercentAboveBaseline float64
	ZScore               float64
	TopWarehouse         *string
	TopWarehouseCredits  float64
}

// SnapshotEfficiencyRecord represents a row from the snowdash_snapshot_efficiency table.
type SnapshotEfficiencyRecord struct {
	SnapshotID      int64
	WarehouseName   string
	QueryCount      int64
	EfficiencyScore float64
	Grade           string
	CacheScore      float64
	SpillScore      float64
	ErrorScore      float64
	QueueScore      float64
	PrimaryIssue    *string
}
