package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/warehouse"
	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func series(values ...float64) []schema.DailyMetricPoint {
	points := make([]schema.DailyMetricPoint, len(values))
	for i, v := range values {
		points[i] = schema.DailyMetricPoint{Date: day(i + 1), Value: v}
	}
	return points
}

func TestShapeTrends(t *testing.T) {
	credits := series(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	queries := series(100, 200)

	section := shapeTrends(sampleTrends(), credits, queries)

	require.Len(t, section.Cards, 2)
	require.Len(t, section.Insights, 2)
	assert.Equal(t, sampleTrends(), section.Metrics)

	creditCard := section.Cards[0]
	assert.Equal(t, schema.TotalCreditsMetric, creditCard.Label)
	assert.Equal(t, "1,234.5", creditCard.Value)
	assert.Equal(t, "+12.5%", creditCard.Delta)
	assert.Equal(t, schema.LowerIsBetter, creditCard.Direction)
	assert.Equal(t, schema.Red, creditCard.DeltaColor)
	assert.Equal(t, []float64{4, 5, 6, 7, 8, 9, 10}, creditCard.Sparkline)
	assert.Equal(t, schema.BarChart, creditCard.ChartType)

	queryCard := section.Cards[1]
	assert.Equal(t, "45,000", queryCard.Value)
	assert.Equal(t, "-3.0%", queryCard.Delta)
	assert.Equal(t, schema.Red, queryCard.DeltaColor)
	assert.Nil(t, queryCard.Sparkline, "two points are too few for a sparkline")
	assert.Empty(t, queryCard.ChartType)

	assert.Equal(t, schema.TrendInsight{MetricName: schema.QueryCountMetric, TrendIcon: "📉", Insight: "Fewer queries"}, section.Insights[1])
}

func TestShapeTrendsNoSparklineForOtherMetrics(t *testing.T) {
	trends := []schema.TrendMetric{{MetricName: schema.ErrorRateMetric, ThisWeekValue: 1.5, ChangePct: -10}}
	section := shapeTrends(trends, series(1, 2, 3, 4), series(1, 2, 3, 4))

	require.Len(t, section.Cards, 1)
	assert.Nil(t, section.Cards[0].Sparkline)
	assert.Equal(t, "1.50%", section.Cards[0].Value)
	assert.Equal(t, schema.Green, section.Cards[0].DeltaColor)
}

func TestShapeTrendsEmpty(t *testing.T) {
	section := shapeTrends(nil, nil, nil)
	assert.NotNil(t, section.Metrics)
	assert.Empty(t, section.Cards)
	assert.Empty(t, section.Insights)
}

func efficiencyRecords(n int) []schema.EfficiencyRecord {
	records := make([]schema.EfficiencyRecord, n)
	for i := range records {
		records[i] = schema.EfficiencyRecord{
			WarehouseName:   "WH_" + strings.Repeat("X", i),
			EfficiencyScore: float64(50 + i*5),
			Grade:           schema.GradeC,
			PrimaryIssue:    schema.NoPrimaryIssue,
			Recommendation:  "Looks fine",
		}
	}
	return records
}

func TestShapeEfficiency(t *testing.T) {
	records := efficiencyRecords(10)
	records[0].PrimaryIssue = "Spilling"
	records[0].Recommendation = "Upsize the warehouse"

	section := shapeEfficiency(7, records)

	assert.False(t, section.Empty)
	assert.Equal(t, 7, section.LookbackDays)
	assert.Equal(t, 10, section.Summary.Analyzed)
	// Scores 50..95; 50, 55, 60, 65 are below 70
	assert.Equal(t, 4, section.Summary.NeedAttention)
	assert.Equal(t, "below 70", section.Summary.AttentionNote)
	assert.InDelta(t, 72.5, section.Summary.AverageScore, 1e-9)
	assert.Equal(t, "72/100", section.Summary.AverageLabel)
	assert.Len(t, section.Records, 10)

	require.Len(t, section.Cards, contract.MaxEfficiencyCards)
	assert.Equal(t, "Upsize the warehouse", section.Cards[0].Recommendation)
	assert.Empty(t, section.Cards[1].Recommendation, "no primary issue hides the recommendation")
	assert.Equal(t, schema.Yellow, section.Cards[0].GradeColor)
	for _, card := range section.Cards {
		assert.LessOrEqual(t, len([]rune(card.WarehouseName)), contract.WarehouseNameWidth)
	}
}

func TestShapeEfficiencyAllHealthy(t *testing.T) {
	section := shapeEfficiency(14, []schema.EfficiencyRecord{
		{WarehouseName: "A", EfficiencyScore: 90, Grade: schema.GradeA},
		{WarehouseName: "B", EfficiencyScore: 70, Grade: schema.GradeB},
	})
	assert.Equal(t, 0, section.Summary.NeedAttention)
	assert.Empty(t, section.Summary.AttentionNote)
	assert.Equal(t, "80/100", section.Summary.AverageLabel)
	assert.Len(t, section.Cards, 2)
}

func TestShapeEfficiencyEmpty(t *testing.T) {
	section := shapeEfficiency(7, nil)
	assert.True(t, section.Empty)
	assert.Equal(t, noEfficiencyMessage, section.Message)
	assert.NotNil(t, section.Records)
	assert.Empty(t, section.Cards)
}

func TestShapeAnomalies(t *testing.T) {
	credits := series(10, 11, 50, 12, 40, 9, 30, 35)
	anomalies := []schema.AnomalyRecord{
		{Date: day(3), Severity: schema.HighSeverity, Value: 50, BaselineAvg: 11.5, PercentAboveBaseline: 334.8, TopContributorName: "ETL_WH", TopContributorValue: 30},
		{Date: day(5), Severity: schema.CriticalSeverity, Value: 40, BaselineAvg: 12},
		{Date: day(7), Severity: schema.LowSeverity, Value: 30, BaselineAvg: 12},
		{Date: day(8), Severity: schema.LowSeverity, Value: 35, BaselineAvg: 12},
		{Date: day(1), Severity: schema.MediumSeverity, Value: 10, BaselineAvg: 12},
		{Date: day(2), Severity: schema.MediumSeverity, Value: 11, BaselineAvg: 12},
		{Date: day(4), Severity: schema.LowSeverity, Value: 12, BaselineAvg: 12},
	}

	section := shapeAnomalies(30, 2.0, credits, anomalies)

	assert.False(t, section.Empty)
	require.NotNil(t, section.Baseline)
	assert.InDelta(t, 11.5, *section.Baseline, 1e-9, "baseline comes from the first record")
	assert.Equal(t, "7 anomalies detected", section.Summary)

	require.Len(t, section.Series, 8)
	assert.True(t, section.Series[2].IsAnomaly)
	assert.Equal(t, schema.HighSeverity, section.Series[2].Severity)
	assert.False(t, section.Series[5].IsAnomaly)
	assert.Equal(t, schema.NormalSeverity, section.Series[5].Severity)

	require.Len(t, section.Ranked, 7)
	assert.Equal(t, schema.CriticalSeverity, section.Ranked[0].Severity)
	assert.Equal(t, schema.HighSeverity, section.Ranked[1].Severity)
	assert.Equal(t, day(2), section.Ranked[2].Date, "ties break by most recent date")

	require.Len(t, section.Cards, contract.MaxAnomalyCards)
	assert.Equal(t, schema.Red, section.Cards[0].Color)
	assert.Equal(t, "Jan 03: 50.0 credits (+335% vs baseline) | Top consumer: ETL_WH (30.0 credits)", section.Cards[1].Headline)
}

func TestShapeAnomaliesEmpty(t *testing.T) {
	section := shapeAnomalies(14, 2.5, series(1, 2, 3), nil)
	assert.True(t, section.Empty)
	assert.Nil(t, section.Baseline)
	assert.Equal(t, "No cost anomalies detected in the last 14 days with z-score threshold of 2.5", section.Message)
	assert.NotNil(t, section.Ranked)
	assert.Empty(t, section.Cards)
	require.Len(t, section.Series, 3)
	for _, p := range section.Series {
		assert.False(t, p.IsAnomaly)
	}
}

func TestFooterNotes(t *testing.T) {
	notes := footerNotes(10*time.Minute, 3)
	assert.Equal(t, []string{
		"Data refreshes every 10 minutes",
		"Data latency: ~45 minutes",
		"Credit conversion: $3/credit",
	}, notes)

	assert.Equal(t, "Credit conversion: $2.5/credit", footerNotes(time.Minute, 2.5)[2])
}

func TestRefreshInterval(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want string
	}{
		{10 * time.Minute, "10 minutes"},
		{time.Minute, "minute"},
		{time.Hour, "60 minutes"},
		{90 * time.Second, "1m30s"},
		{30 * time.Second, "30s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, refreshInterval(tt.ttl))
		})
	}
}

func mockDashboardWarehouse(params schema.DashboardParams) *warehouse.MockWarehouse {
	wh := &warehouse.MockWarehouse{}
	wh.On("Trends", mock.Anything).Return(sampleTrends(), nil)
	wh.On("DailyCredits", mock.Anything, contract.TrendSeriesDays).Return(series(1, 2, 3, 4, 5), nil)
	wh.On("DailyQueries", mock.Anything, contract.TrendSeriesDays).Return(series(10, 20, 30), nil)
	wh.On("Efficiency", mock.Anything, params.EfficiencyLookbackDays).Return(efficiencyRecords(3), nil)
	wh.On("Anomalies", mock.Anything, params.AnomalyLookbackDays, params.AnomalyThreshold).Return([]schema.AnomalyRecord{
		{Date: day(2), Severity: schema.MediumSeverity, Value: 20, BaselineAvg: 5},
	}, nil)
	if params.AnomalyLookbackDays != contract.TrendSeriesDays {
		wh.On("DailyCredits", mock.Anything, params.AnomalyLookbackDays).Return(series(5, 20, 4), nil)
	}
	wh.On("Close").Return(nil)
	return wh
}

func TestBuildDashboard(t *testing.T) {
	params := contract.DefaultParams()
	wh := mockDashboardWarehouse(params)
	clock := newClock()
	s := NewSession(wh, nil, WithClock(clock.Now))

	dashboard, err := BuildDashboard(context.Background(), s, params, 3)
	require.NoError(t, err)

	assert.Equal(t, clock.Now(), dashboard.GeneratedAt)
	assert.Equal(t, params, dashboard.Params)
	assert.Len(t, dashboard.Trends.Cards, 2)
	assert.Equal(t, 3, dashboard.Efficiency.Summary.Analyzed)
	assert.Len(t, dashboard.Anomalies.Series, 3)
	assert.True(t, dashboard.Anomalies.Series[1].IsAnomaly)
	assert.Len(t, dashboard.Footer, 3)
}

func TestBuildDashboardErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		setup   func(*warehouse.MockWarehouse)
		wantMsg string
	}{
		{
			name: "trends",
			setup: func(wh *warehouse.MockWarehouse) {
				wh.On("Trends", mock.Anything).Return(nil, boom)
			},
			wantMsg: "failed to build trends",
		},
		{
			name: "efficiency",
			setup: func(wh *warehouse.MockWarehouse) {
				wh.On("Trends", mock.Anything).Return(sampleTrends(), nil)
				wh.On("DailyCredits", mock.Anything, mock.Anything).Return(series(1, 2, 3), nil)
				wh.On("DailyQueries", mock.Anything, mock.Anything).Return(series(1, 2, 3), nil)
				wh.On("Efficiency", mock.Anything, mock.Anything).Return(nil, boom)
			},
			wantMsg: "failed to build efficiency",
		},
		{
			name: "anomalies",
			setup: func(wh *warehouse.MockWarehouse) {
				wh.On("Trends", mock.Anything).Return(sampleTrends(), nil)
				wh.On("DailyCredits", mock.Anything, mock.Anything).Return(series(1, 2, 3), nil)
				wh.On("DailyQueries", mock.Anything, mock.Anything).Return(series(1, 2, 3), nil)
				wh.On("Efficiency", mock.Anything, mock.Anything).Return(efficiencyRecords(1), nil)
				wh.On("Anomalies", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)
			},
			wantMsg: "failed to build anomalies",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh := &warehouse.MockWarehouse{}
			tt.setup(wh)
			s := NewSession(wh, nil)

			_, err := BuildDashboard(context.Background(), s, contract.DefaultParams(), 3)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
