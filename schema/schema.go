// Package schema has the typed records, render models and enums shared across snowdash.
package schema

import (
	"time"
)

// DateLayout is the canonical calendar date layout.
const DateLayout = "2006-01-02"

// DailyMetricPoint is one day of an aggregated usage series.
type DailyMetricPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// AnomalyRecord is one day flagged by the cost anomaly procedure.
type AnomalyRecord struct {
	Date                 time.Time `json:"date"`
	Severity             Severity  `json:"severity"`
	Value                float64   `json:"value"`
	BaselineAvg          float64   `json:"baseline_avg"`
	PercentAboveBaseline float64   `json:"percent_above_baseline"`
	TopContributorName   string    `json:"top_contributor_name"`
	TopContributorValue  float64   `json:"top_contributor_value"`
	ZScore               float64   `json:"z_score"`
}

// AnnotatedSeriesPoint is a daily point joined with its anomaly severity.
// Severity is NormalSeverity exactly when IsAnomaly is false.
type AnnotatedSeriesPoint struct {
	Date      time.Time `json:"date"`
	Value     float64   `json:"value"`
	IsAnomaly bool      `json:"is_anomaly"`
	Severity  Severity  `json:"severity"`
}

// EfficiencyRecord is one warehouse row from the efficiency procedure.
type EfficiencyRecord struct {
	WarehouseName   string  `json:"warehouse_name"`
	QueryCount      int64   `json:"query_count"`
	EfficiencyScore float64 `json:"efficiency_score"`
	Grade           Grade   `json:"grade"`
	CacheScore      float64 `json:"cache_score"`
	SpillScore      float64 `json:"spill_score"`
	ErrorScore      float64 `json:"error_score"`
	QueueScore      float64 `json:"queue_score"`
	PrimaryIssue    string  `json:"primary_issue"`
	Recommendation  string  `json:"recommendation"`
}

// TrendMetric is one row from the week-over-week trend procedure.
type TrendMetric struct {
	MetricName    string  `json:"metric_name"`
	ThisWeekValue float64 `json:"this_week_value"`
	ChangePct     float64 `json:"change_pct"`
	TrendIcon     string  `json:"trend_icon"`
	InsightText   string  `json:"insight_text"`
}

// DateKey returns the calendar date key used to join series and anomalies.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// CivilDate truncates t to midnight UTC of its calendar date.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
