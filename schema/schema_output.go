package schema

import "time"

// DashboardParams are the validated user-tunable parameters of a dashboard render.
type DashboardParams struct {
	EfficiencyLookbackDays int     `json:"efficiency_lookback_days"`
	AnomalyLookbackDays    int     `json:"anomaly_lookback_days"`
	AnomalyThreshold       float64 `json:"anomaly_threshold"`
}

// KPICard is a single headline metric with its week-over-week delta.
type KPICard struct {
	Label      string    `json:"label"`
	Value      string    `json:"value"`
	RawValue   float64   `json:"raw_value"`
	Delta      string    `json:"delta"`
	ChangePct  float64   `json:"change_pct"`
	Direction  Direction `json:"direction"`
	DeltaColor Color     `json:"delta_color"`
	Sparkline  []float64 `json:"sparkline,omitempty"`
	ChartType  ChartType `json:"chart_type,omitempty"`
}

// TrendInsight is the icon and narrative attached to a trend metric.
type TrendInsight struct {
	MetricName string `json:"metric_name"`
	TrendIcon  string `json:"trend_icon"`
	Insight    string `json:"insight"`
}

// TrendsSection is the KPI row plus its narrative insights.
type TrendsSection struct {
	Cards    []KPICard      `json:"cards"`
	Insights []TrendInsight `json:"insights"`
	Metrics  []TrendMetric  `json:"metrics"`
}

// EfficiencySummary aggregates the efficiency records of a lookback window.
type EfficiencySummary struct {
	AverageScore  float64 `json:"average_score"`
	AverageLabel  string  `json:"average_label"`
	Analyzed      int     `json:"analyzed"`
	NeedAttention int     `json:"need_attention"`
	AttentionNote string  `json:"attention_note"`
}

// EfficiencyCard is the compact per-warehouse view shown in the card grid.
type EfficiencyCard struct {
	WarehouseName  string  `json:"warehouse_name"`
	Grade          Grade   `json:"grade"`
	GradeColor     Color   `json:"grade_color"`
	Score          float64 `json:"score"`
	CacheScore     float64 `json:"cache_score"`
	SpillScore     float64 `json:"spill_score"`
	ErrorScore     float64 `json:"error_score"`
	QueueScore     float64 `json:"queue_score"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// EfficiencySection is the efficiency summary, card grid and detail table.
type EfficiencySection struct {
	LookbackDays int                `json:"lookback_days"`
	Summary      EfficiencySummary  `json:"summary"`
	Cards        []EfficiencyCard   `json:"cards"`
	Records      []EfficiencyRecord `json:"records"`
	Empty        bool               `json:"empty"`
	Message      string             `json:"message,omitempty"`
}

// AnomalyCard is the one-line rendering of a ranked anomaly.
type AnomalyCard struct {
	Severity Severity `json:"severity"`
	Color    Color    `json:"color"`
	Headline string   `json:"headline"`
}

// AnomalySection is the annotated cost series plus the ranked anomaly list.
type AnomalySection struct {
	LookbackDays int                    `json:"lookback_days"`
	Threshold    float64                `json:"threshold"`
	Series       []AnnotatedSeriesPoint `json:"series"`
	Baseline     *float64               `json:"baseline,omitempty"`
	Ranked       []AnomalyRecord        `json:"ranked"`
	Cards        []AnomalyCard          `json:"cards"`
	Summary      string                 `json:"summary"`
	Empty        bool                   `json:"empty"`
	Message      string                 `json:"message,omitempty"`
}

// Dashboard is the complete render model.
type Dashboard struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Params      DashboardParams   `json:"params"`
	Trends      TrendsSection     `json:"trends"`
	Efficiency  EfficiencySection `json:"efficiency"`
	Anomalies   AnomalySection    `json:"anomalies"`
	Footer      []string          `json:"footer"`
}
