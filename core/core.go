// Package core has the dashboard session, section builders and command executors.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/metrics"
	"github.com/huangsam/snowdash/internal/outwriter"
	"github.com/huangsam/snowdash/internal/warehouse"
	"github.com/huangsam/snowdash/schema"
)

// ErrUnsupportedOutput is returned when a command cannot render the configured output mode.
var ErrUnsupportedOutput = errors.New("unsupported output mode")

// ExecutorFunc defines the function signature for executing the dashboard commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// openWarehouse connects to the configured warehouse. Tests replace it with a mock.
var openWarehouse = func(ctx context.Context, cfg *contract.Config) (contract.Warehouse, error) {
	return warehouse.Open(ctx, cfg.WarehouseBackend, cfg.WarehouseDSN)
}

// newWriter returns the writer used by the executors. Tests replace it with a mock.
var newWriter = func() contract.OutputWriter {
	return outwriter.NewOutWriter()
}

// OpenSession connects to the warehouse and wraps it with the query cache of mgr.
// Close the session to release the warehouse connection.
func OpenSession(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Session, error) {
	wh, err := openWarehouse(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetQueryStore()
	}
	return NewSession(wh, store,
		WithTTL(cfg.CacheTTL),
		WithObserver(metrics.CacheObserver{}),
		WithIdentity(cfg.WarehouseBackend, cfg.WarehouseDSN),
	), nil
}

// Close closes the underlying warehouse connection.
func (s *Session) Close() error {
	if s.warehouse == nil {
		return nil
	}
	return s.warehouse.Close()
}

// ExecuteDashboard builds all sections, records a snapshot when enabled and writes the result.
func ExecuteDashboard(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.Output == schema.CSVOut {
		return fmt.Errorf("%w: csv is only available for the trends, efficiency and anomalies commands", ErrUnsupportedOutput)
	}
	start := time.Now()
	dashboard, err := GetDashboardResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return newWriter().WriteDashboard(dashboard, cfg, time.Since(start))
}

// ExecuteTrends writes the KPI cards and trend insights.
func ExecuteTrends(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	section, err := GetTrendsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return newWriter().WriteTrends(section, cfg, time.Since(start))
}

// ExecuteEfficiency writes the warehouse efficiency section.
func ExecuteEfficiency(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	section, err := GetEfficiencyResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return newWriter().WriteEfficiency(section, cfg, time.Since(start))
}

// ExecuteAnomalies writes the cost anomaly section.
func ExecuteAnomalies(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	section, err := GetAnomalyResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return newWriter().WriteAnomalies(section, cfg, time.Since(start))
}

// GetDashboardResults builds every section and records a snapshot when a snapshot store is set.
func GetDashboardResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.Dashboard, error) {
	var dashboard schema.Dashboard
	err := withSession(ctx, cfg, mgr, "Building dashboard", func(s *Session) error {
		var err error
		dashboard, err = BuildDashboard(ctx, s, cfg.Params, cfg.CreditPrice)
		metrics.ObserveDashboardBuild(err)
		if err != nil {
			return err
		}
		recordSnapshot(ctx, cfg, mgr, dashboard)
		return nil
	})
	return dashboard, err
}

// GetTrendsResults loads the trends section.
func GetTrendsResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.TrendsSection, error) {
	var section schema.TrendsSection
	err := withSession(ctx, cfg, mgr, "Loading week-over-week trends", func(s *Session) error {
		var err error
		section, err = BuildTrendsSection(ctx, s)
		return err
	})
	return section, err
}

// GetEfficiencyResults loads the efficiency section for cfg.Params.
func GetEfficiencyResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.EfficiencySection, error) {
	var section schema.EfficiencySection
	err := withSession(ctx, cfg, mgr, "Loading warehouse efficiency", func(s *Session) error {
		var err error
		section, err = BuildEfficiencySection(ctx, s, cfg.Params.EfficiencyLookbackDays)
		return err
	})
	return section, err
}

// GetAnomalyResults loads the anomaly section for cfg.Params.
func GetAnomalyResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.AnomalySection, error) {
	var section schema.AnomalySection
	err := withSession(ctx, cfg, mgr, "Loading cost anomalies", func(s *Session) error {
		var err error
		section, err = BuildAnomalySection(ctx, s, cfg.Params.AnomalyLookbackDays, cfg.Params.AnomalyThreshold)
		return err
	})
	return section, err
}

// withSession opens a session, logs a progress header and always closes the warehouse.
func withSession(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, header string, run func(*Session) error) error {
	if !shouldSuppressHeader(ctx) {
		contract.LogInfo("❄️", fmt.Sprintf("%s from the %s warehouse...", header, cfg.WarehouseBackend), cfg.UseEmojis)
	}
	s, err := OpenSession(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return run(s)
}

// recordSnapshot stores the dashboard in the snapshot store. Failures only warn.
func recordSnapshot(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, dashboard schema.Dashboard) {
	if mgr == nil {
		return
	}
	store := mgr.GetSnapshotStore()
	if store == nil {
		return
	}
	snap := schema.Snapshot{
		RunUUID:    uuid.NewString(),
		CapturedAt: dashboard.GeneratedAt,
		Params:     dashboard.Params,
		Trends:     dashboard.Trends.Metrics,
		Efficiency: dashboard.Efficiency.Records,
		Anomalies:  dashboard.Anomalies.Ranked,
	}
	id, err := store.RecordSnapshot(snap)
	if err != nil {
		contract.LogWarn("Failed to record dashboard snapshot", err)
		return
	}
	if id > 0 && !shouldSuppressHeader(ctx) {
		contract.LogInfo("📸", fmt.Sprintf("Recorded snapshot %d (%s)", id, snap.RunUUID), cfg.UseEmojis)
	}
}
