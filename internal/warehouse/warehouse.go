// Package warehouse issues the typed usage queries against the analytics warehouse.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/metrics"
	"github.com/huangsam/snowdash/internal/traces"
	"github.com/huangsam/snowdash/schema"
	_ "github.com/jackc/pgx/v5/stdlib"     // PostgreSQL driver
	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver
	_ "modernc.org/sqlite"                 // SQLite driver
)

// Result columns per query.
var (
	trendColumns      = []string{"METRIC_NAME", "THIS_WEEK_VALUE", "CHANGE_PCT", "TREND", "INSIGHT"}
	efficiencyColumns = []string{
		"WAREHOUSE_NAME", "EFFICIENCY_SCORE", "EFFICIENCY_GRADE",
		"CACHE_SCORE", "SPILL_SCORE", "ERROR_SCORE", "QUEUE_SCORE",
		"PRIMARY_ISSUE", "RECOMMENDATION",
	}
	anomalyColumns = []string{
		"USAGE_DATE", "ANOMALY_SEVERITY", "DAILY_CREDITS", "BASELINE_AVG",
		"PERCENT_ABOVE_BASELINE", "TOP_WAREHOUSE", "TOP_WAREHOUSE_CREDITS", "Z_SCORE",
	}
	dailyCreditColumns = []string{"USAGE_DATE", "DAILY_CREDITS"}
	dailyQueryColumns  = []string{"USAGE_DATE", "QUERY_COUNT"}
)

// Client runs dashboard queries over a database/sql connection.
type Client struct {
	db      *sql.DB
	backend schema.WarehouseBackend
	dialect Dialect
}

var _ contract.Warehouse = &Client{} // Compile-time check

// Open connects to the warehouse and verifies the connection.
func Open(ctx context.Context, backend schema.WarehouseBackend, dsn string) (*Client, error) {
	dialect, err := DialectFor(backend)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s warehouse: %w", backend, err)
	}
	if backend == schema.SQLiteWarehouse {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s warehouse. Check the DSN and network access: %w", backend, err)
	}
	return &Client{db: db, backend: backend, dialect: dialect}, nil
}

// New wraps an existing connection.
func New(db *sql.DB, backend schema.WarehouseBackend) (*Client, error) {
	dialect, err := DialectFor(backend)
	if err != nil {
		return nil, err
	}
	return &Client{db: db, backend: backend, dialect: dialect}, nil
}

// Trends returns the week-over-week trend rows.
func (c *Client) Trends(ctx context.Context) ([]schema.TrendMetric, error) {
	return observe(ctx, c, "trends", func(ctx context.Context) ([]schema.TrendMetric, error) {
		return fetchRows(ctx, c.db, c.dialect.Trends, nil, trendColumns, parseTrend)
	})
}

// Efficiency returns per-warehouse efficiency scores over the lookback window.
func (c *Client) Efficiency(ctx context.Context, lookbackDays int) ([]schema.EfficiencyRecord, error) {
	return observe(ctx, c, "efficiency", func(ctx context.Context) ([]schema.EfficiencyRecord, error) {
		return fetchRows(ctx, c.db, c.dialect.Efficiency, []any{lookbackDays}, efficiencyColumns, parseEfficiency)
	})
}

// Anomalies returns the days whose spend exceeds the z-score threshold.
func (c *Client) Anomalies(ctx context.Context, lookbackDays int, threshold float64) ([]schema.AnomalyRecord, error) {
	return observe(ctx, c, "anomalies", func(ctx context.Context) ([]schema.AnomalyRecord, error) {
		return fetchRows(ctx, c.db, c.dialect.Anomalies, []any{lookbackDays, threshold}, anomalyColumns, parseAnomaly)
	})
}

// DailyCredits returns credits consumed per calendar day, oldest first.
func (c *Client) DailyCredits(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error) {
	return observe(ctx, c, "daily_credits", func(ctx context.Context) ([]schema.DailyMetricPoint, error) {
		return fetchRows(ctx, c.db, c.dialect.DailyCredits, []any{lookbackDays}, dailyCreditColumns, dailyParser("DAILY_CREDITS"))
	})
}

// DailyQueries returns queries executed per calendar day, oldest first.
func (c *Client) DailyQueries(ctx context.Context, lookbackDays int) ([]schema.DailyMetricPoint, error) {
	return observe(ctx, c, "daily_queries", func(ctx context.Context) ([]schema.DailyMetricPoint, error) {
		return fetchRows(ctx, c.db, c.dialect.DailyQueries, []any{lookbackDays}, dailyQueryColumns, dailyParser("QUERY_COUNT"))
	})
}

// Close closes the underlying DB connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// observe wraps a query with a span and latency metrics.
func observe[T any](ctx context.Context, c *Client, operation string, run func(context.Context) ([]T, error)) ([]T, error) {
	ctx, span := traces.StartSpan(ctx, "warehouse."+operation,
		traces.Operation(operation),
		traces.Backend(string(c.backend)),
	)
	defer span.End()

	start := time.Now()
	out, err := run(ctx)
	metrics.ObserveWarehouseQuery(operation, time.Since(start), err)
	if err != nil {
		traces.Fail(span, err)
		return nil, fmt.Errorf("%s query failed: %w", operation, err)
	}
	span.SetAttributes(traces.RowCount(len(out)))
	return out, nil
}

func parseTrend(r row) (schema.TrendMetric, error) {
	name, err := r.str("METRIC_NAME")
	if err != nil {
		return schema.TrendMetric{}, err
	}
	value, err := r.num("THIS_WEEK_VALUE")
	if err != nil {
		return schema.TrendMetric{}, err
	}
	change, err := r.num("CHANGE_PCT")
	if err != nil {
		return schema.TrendMetric{}, err
	}
	return schema.TrendMetric{
		MetricName:    name,
		ThisWeekValue: value,
		ChangePct:     change,
		TrendIcon:     r.text("TREND"),
		InsightText:   r.text("INSIGHT"),
	}, nil
}

func parseEfficiency(r row) (schema.EfficiencyRecord, error) {
	rec := schema.EfficiencyRecord{
		PrimaryIssue:   r.text("PRIMARY_ISSUE"),
		Recommendation: r.text("RECOMMENDATION"),
	}
	var err error
	if rec.WarehouseName, err = r.str("WAREHOUSE_NAME"); err != nil {
		return rec, err
	}
	grade, err := r.str("EFFICIENCY_GRADE")
	if err != nil {
		return rec, err
	}
	rec.Grade = schema.Grade(strings.ToUpper(strings.TrimSpace(grade)))
	if r.has("QUERY_COUNT") && r.values["QUERY_COUNT"] != nil {
		if rec.QueryCount, err = r.count("QUERY_COUNT"); err != nil {
			return rec, err
		}
	}
	scores := []struct {
		col string
		dst *float64
	}{
		{"EFFICIENCY_SCORE", &rec.EfficiencyScore},
		{"CACHE_SCORE", &rec.CacheScore},
		{"SPILL_SCORE", &rec.SpillScore},
		{"ERROR_SCORE", &rec.ErrorScore},
		{"QUEUE_SCORE", &rec.QueueScore},
	}
	for _, s := range scores {
		if *s.dst, err = r.num(s.col); err != nil {
			return rec, err
		}
	}
	if rec.PrimaryIssue == "" {
		rec.PrimaryIssue = schema.NoPrimaryIssue
	}
	return rec, nil
}

func parseAnomaly(r row) (schema.AnomalyRecord, error) {
	rec := schema.AnomalyRecord{TopContributorName: r.text("TOP_WAREHOUSE")}
	var err error
	if rec.Date, err = r.date("USAGE_DATE"); err != nil {
		return rec, err
	}
	severity, err := r.str("ANOMALY_SEVERITY")
	if err != nil {
		return rec, err
	}
	rec.Severity = schema.Severity(strings.ToUpper(strings.TrimSpace(severity)))
	if _, ok := schema.ValidSeverities[rec.Severity]; !ok {
		return rec, r.malformed("ANOMALY_SEVERITY", fmt.Sprintf("unknown severity %q", severity))
	}
	nums := []struct {
		col string
		dst *float64
	}{
		{"DAILY_CREDITS", &rec.Value},
		{"BASELINE_AVG", &rec.BaselineAvg},
		{"PERCENT_ABOVE_BASELINE", &rec.PercentAboveBaseline},
		{"Z_SCORE", &rec.ZScore},
	}
	for _, n := range nums {
		if *n.dst, err = r.num(n.col); err != nil {
			return rec, err
		}
	}
	if r.values["TOP_WAREHOUSE_CREDITS"] != nil {
		if rec.TopContributorValue, err = r.num("TOP_WAREHOUSE_CREDITS"); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func dailyParser(valueColumn string) func(row) (schema.DailyMetricPoint, error) {
	return func(r row) (schema.DailyMetricPoint, error) {
		date, err := r.date("USAGE_DATE")
		if err != nil {
			return schema.DailyMetricPoint{}, err
		}
		value, err := r.num(valueColumn)
		if err != nil {
			return schema.DailyMetricPoint{}, err
		}
		return schema.DailyMetricPoint{Date: date, Value: value}, nil
	}
}
