package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testDay = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func sampleTrends() schema.TrendsSection {
	return schema.TrendsSection{
		Cards: []schema.KPICard{
			{Label: schema.TotalCreditsMetric, Value: "1,234.5", Delta: "+12.0%", ChangePct: 12,
				Direction: schema.LowerIsBetter, DeltaColor: schema.Red, Sparkline: []float64{1, 2, 3}, ChartType: schema.BarChart},
			{Label: schema.QueryCountMetric, Value: "50,000", Delta: "-3.0%", ChangePct: -3,
				Direction: schema.HigherIsBetter, DeltaColor: schema.Red},
		},
		Insights: []schema.TrendInsight{
			{MetricName: schema.TotalCreditsMetric, TrendIcon: "📈", Insight: "Credits up sharply"},
			{MetricName: schema.QueryCountMetric, TrendIcon: "📉"},
		},
		Metrics: []schema.TrendMetric{
			{MetricName: schema.TotalCreditsMetric, ThisWeekValue: 1234.5, ChangePct: 12, TrendIcon: "📈", InsightText: "Credits up sharply"},
			{MetricName: schema.QueryCountMetric, ThisWeekValue: 50000, ChangePct: -3, TrendIcon: "📉"},
		},
	}
}

func sampleEfficiency() schema.EfficiencySection {
	return schema.EfficiencySection{
		LookbackDays: 7,
		Summary: schema.EfficiencySummary{
			AverageScore: 78, AverageLabel: "78/100", Analyzed: 2, NeedAttention: 1, AttentionNote: "below 70",
		},
		Cards: []schema.EfficiencyCard{
			{WarehouseName: "ETL_WH", Grade: schema.GradeD, GradeColor: schema.Orange, Score: 64, Recommendation: "Increase warehouse size"},
			{WarehouseName: "BI_WH", Grade: schema.GradeA, GradeColor: schema.Green, Score: 92},
		},
		Records: []schema.EfficiencyRecord{
			{WarehouseName: "ETL_WH", QueryCount: 12345, EfficiencyScore: 64, Grade: schema.GradeD,
				PrimaryIssue: "High spill", Recommendation: "Increase warehouse size"},
			{WarehouseName: "BI_WH", QueryCount: 80, EfficiencyScore: 92, Grade: schema.GradeA, PrimaryIssue: schema.NoPrimaryIssue},
		},
	}
}

func sampleAnomalies() schema.AnomalySection {
	baseline := 40.0
	critical := schema.AnomalyRecord{
		Date: testDay, Severity: schema.CriticalSeverity, Value: 100, BaselineAvg: 40,
		PercentAboveBaseline: 150, ZScore: 3.2, TopContributorName: "ETL_WH", TopContributorValue: 60,
	}
	return schema.AnomalySection{
		LookbackDays: 30,
		Threshold:    2,
		Series: []schema.AnnotatedSeriesPoint{
			{Date: testDay.AddDate(0, 0, -1), Value: 40, Severity: schema.NormalSeverity},
			{Date: testDay, Value: 100, IsAnomaly: true, Severity: schema.CriticalSeverity},
		},
		Baseline: &baseline,
		Ranked:   []schema.AnomalyRecord{critical},
		Cards: []schema.AnomalyCard{
			{Severity: schema.CriticalSeverity, Color: schema.Red,
				Headline: "Jan 02: 100.0 credits (+150% vs baseline) | Top consumer: ETL_WH (60.0 credits)"},
		},
		Summary: "1 anomalies detected",
	}
}

func textConfig() *contract.Config {
	return &contract.Config{Output: schema.TextOut, Width: 80, CacheBackend: schema.MemoryBackend}
}

func TestWriteTrendsText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTrendsText(&buf, sampleTrends(), textConfig()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Week-over-Week Trends\n"), "No emoji when disabled")
	assert.Contains(t, out, "1,234.5")
	assert.Contains(t, out, "+12.0%")
	assert.Contains(t, out, "▁▅█")
	assert.Contains(t, out, "📈 Total Credits: Credits up sharply")
	assert.NotContains(t, out, "Query Count: \n", "Empty insights are skipped")
}

func TestWriteTrendsTextEmpty(t *testing.T) {
	cfg := textConfig()
	cfg.UseEmojis = true
	var buf bytes.Buffer
	require.NoError(t, writeTrendsText(&buf, schema.TrendsSection{}, cfg))
	assert.Equal(t, "📈 Week-over-Week Trends\nNo trend data available.\n", buf.String())
}

func TestWriteEfficiencyText(t *testing.T) {
	t.Run("with records", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEfficiencyText(&buf, sampleEfficiency(), textConfig()))
		out := buf.String()
		assert.Contains(t, out, "Warehouse Efficiency (last 7 days)")
		assert.Contains(t, out, "Average score: 78/100 | Warehouses analyzed: 2 | Need attention: 1 (below 70)")
		assert.Contains(t, out, "Increase warehouse size")
		assert.Contains(t, out, "12,345")
		assert.Contains(t, out, "High spill")
	})

	t.Run("empty", func(t *testing.T) {
		section := schema.EfficiencySection{LookbackDays: 14, Empty: true, Message: "No warehouse activity found in the selected period."}
		var buf bytes.Buffer
		require.NoError(t, writeEfficiencyText(&buf, section, textConfig()))
		assert.Equal(t, "Warehouse Efficiency (last 14 days)\nNo warehouse activity found in the selected period.\n", buf.String())
	})
}

func TestWriteAnomaliesText(t *testing.T) {
	t.Run("with anomalies", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeAnomaliesText(&buf, sampleAnomalies(), textConfig()))
		out := buf.String()
		assert.Contains(t, out, "Cost Anomalies (last 30 days, z-score >= 2.0)")
		assert.Contains(t, out, "Jan 02 │")
		assert.Contains(t, out, "baseline 40.0 credits/day")
		assert.Contains(t, out, "1 anomalies detected")
		assert.Contains(t, out, "[CRITICAL] Jan 02: 100.0 credits (+150% vs baseline)")
		assert.Contains(t, out, "2024-01-02")
		assert.Contains(t, out, "ETL_WH (60.0)")
	})

	t.Run("empty", func(t *testing.T) {
		section := schema.AnomalySection{
			LookbackDays: 30, Threshold: 2.5, Empty: true,
			Message: "No cost anomalies detected in the last 30 days with z-score threshold of 2.5",
		}
		var buf bytes.Buffer
		require.NoError(t, writeAnomaliesText(&buf, section, textConfig()))
		assert.Contains(t, buf.String(), "No cost anomalies detected in the last 30 days with z-score threshold of 2.5")
	})
}

func TestWriteDashboardText(t *testing.T) {
	dashboard := schema.Dashboard{
		GeneratedAt: testDay,
		Params:      contract.DefaultParams(),
		Trends:      sampleTrends(),
		Efficiency:  sampleEfficiency(),
		Anomalies:   sampleAnomalies(),
		Footer:      []string{"Data refreshes every 10 minutes", "Data latency: ~45 minutes", "Credit conversion: $3/credit"},
	}
	var buf bytes.Buffer
	require.NoError(t, writeDashboardText(&buf, dashboard, textConfig(), 1500*time.Millisecond))
	out := buf.String()

	trendsAt := strings.Index(out, "Week-over-Week Trends")
	efficiencyAt := strings.Index(out, "Warehouse Efficiency")
	anomaliesAt := strings.Index(out, "Cost Anomalies")
	assert.True(t, trendsAt < efficiencyAt && efficiencyAt < anomaliesAt, "Sections render in page order")
	assert.Contains(t, out, "Credit conversion: $3/credit")
	assert.Contains(t, out, "Dashboard loaded in 1.5s. Cache backend: memory")
}

func TestWriteSectionCSV(t *testing.T) {
	ow := NewOutWriter()
	outFile := filepath.Join(t.TempDir(), "anomalies.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: outFile}

	require.NoError(t, ow.WriteAnomalies(sampleAnomalies(), cfg, time.Second))

	file, err := os.Open(outFile)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "usage_date", records[0][0])
	assert.Equal(t, []string{"2024-01-02", "CRITICAL", "100", "40", "150", "3.2", "ETL_WH", "60"}, records[1])
}

func TestWriteEfficiencyCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, efficiencySheet(sampleEfficiency())))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ETL_WH,12345,64,D,0,0,0,0,High spill,Increase warehouse size", lines[1])
}

func TestWriteTrendsJSON(t *testing.T) {
	ow := NewOutWriter()
	outFile := filepath.Join(t.TempDir(), "trends.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: outFile}

	require.NoError(t, ow.WriteTrends(sampleTrends(), cfg, time.Second))

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var decoded schema.TrendsSection
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Cards, 2)
	assert.Equal(t, schema.BarChart, decoded.Cards[0].ChartType)
	assert.Equal(t, []float64{1, 2, 3}, decoded.Cards[0].Sparkline)
	assert.Nil(t, decoded.Cards[1].Sparkline)
}

func TestWriteDashboardXLSX(t *testing.T) {
	ow := NewOutWriter()
	outFile := filepath.Join(t.TempDir(), "dashboard.xlsx")
	cfg := &contract.Config{Output: schema.XLSXOut, OutputFile: outFile}
	dashboard := schema.Dashboard{
		GeneratedAt: testDay,
		Params:      contract.DefaultParams(),
		Trends:      sampleTrends(),
		Efficiency:  sampleEfficiency(),
		Anomalies:   sampleAnomalies(),
	}

	require.NoError(t, ow.WriteDashboard(dashboard, cfg, time.Second))

	f, err := excelize.OpenFile(outFile)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Trends", "Efficiency", "Anomalies", "Daily Credits", "About"}, f.GetSheetList())

	rows, err := f.GetRows("Efficiency")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "warehouse_name", rows[0][0])
	assert.Equal(t, "ETL_WH", rows[1][0])
	assert.Equal(t, "12345", rows[1][1])

	rows, err = f.GetRows("Anomalies")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", rows[1][0])
}

func TestWriteSectionXLSX(t *testing.T) {
	ow := NewOutWriter()
	outFile := filepath.Join(t.TempDir(), "trends.xlsx")
	cfg := &contract.Config{Output: schema.XLSXOut, OutputFile: outFile}

	require.NoError(t, ow.WriteTrends(sampleTrends(), cfg, time.Second))

	f, err := excelize.OpenFile(outFile)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Trends"}, f.GetSheetList())

	rows, err := f.GetRows("Trends")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "metric_name", rows[0][0])
	assert.Equal(t, schema.TotalCreditsMetric, rows[1][0])
	assert.Equal(t, string(schema.LowerIsBetter), rows[1][3])
}

func TestWriteXLSXRequiresFile(t *testing.T) {
	err := writeXLSX("", []sheet{{name: "x"}})
	assert.ErrorContains(t, err, "--output-file")
}

func TestWriteDashboardCSVUnsupported(t *testing.T) {
	err := NewOutWriter().WriteDashboard(schema.Dashboard{}, &contract.Config{Output: schema.CSVOut}, 0)
	assert.Error(t, err)
}

func TestCSVCell(t *testing.T) {
	assert.Equal(t, "", csvCell(nil))
	assert.Equal(t, "1.25", csvCell(1.25))
	assert.Equal(t, "7", csvCell(7))
	assert.Equal(t, "9000000000", csvCell(int64(9000000000)))
	assert.Equal(t, "true", csvCell(true))
	assert.Equal(t, "2024-01-02", csvCell(testDay))
	assert.Equal(t, "HIGH", csvCell(schema.HighSeverity))
}
