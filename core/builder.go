package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/snowdash/core/algo"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
)

// Messages shown for empty sections.
const (
	noEfficiencyMessage = "No warehouse activity found in the selected period."
	noAnomalyMessage    = "No cost anomalies detected in the last %d days with z-score threshold of %.1f"
	dataLatencyNote     = "Data latency: ~45 minutes"
	cacheRefreshNote    = "Data refreshes every %s"
)

// BuildTrendsSection loads the trend rows and daily series and shapes the KPI cards.
func BuildTrendsSection(ctx context.Context, s *Session) (schema.TrendsSection, error) {
	trends, err := s.LoadTrends(ctx)
	if err != nil {
		return schema.TrendsSection{}, err
	}
	credits, err := s.LoadDailyCredits(ctx, contract.TrendSeriesDays)
	if err != nil {
		return schema.TrendsSection{}, err
	}
	queries, err := s.LoadDailyQueries(ctx, contract.TrendSeriesDays)
	if err != nil {
		return schema.TrendsSection{}, err
	}
	return shapeTrends(trends, credits, queries), nil
}

// BuildEfficiencySection loads efficiency scores and shapes the summary and cards.
func BuildEfficiencySection(ctx context.Context, s *Session, lookbackDays int) (schema.EfficiencySection, error) {
	records, err := s.LoadEfficiency(ctx, lookbackDays)
	if err != nil {
		return schema.EfficiencySection{}, err
	}
	return shapeEfficiency(lookbackDays, records), nil
}

// BuildAnomalySection loads the anomalies and the daily credit series they annotate.
func BuildAnomalySection(ctx context.Context, s *Session, lookbackDays int, threshold float64) (schema.AnomalySection, error) {
	anomalies, err := s.LoadAnomalies(ctx, lookbackDays, threshold)
	if err != nil {
		return schema.AnomalySection{}, err
	}
	credits, err := s.LoadDailyCredits(ctx, lookbackDays)
	if err != nil {
		return schema.AnomalySection{}, err
	}
	return shapeAnomalies(lookbackDays, threshold, credits, anomalies), nil
}

// BuildDashboard builds every section for the given parameters.
func BuildDashboard(ctx context.Context, s *Session, params schema.DashboardParams, creditPrice float64) (schema.Dashboard, error) {
	dashboard := schema.Dashboard{
		GeneratedAt: s.now().UTC(),
		Params:      params,
	}

	var err error
	if dashboard.Trends, err = BuildTrendsSection(ctx, s); err != nil {
		return dashboard, fmt.Errorf("failed to build trends: %w", err)
	}
	if dashboard.Efficiency, err = BuildEfficiencySection(ctx, s, params.EfficiencyLookbackDays); err != nil {
		return dashboard, fmt.Errorf("failed to build efficiency: %w", err)
	}
	if dashboard.Anomalies, err = BuildAnomalySection(ctx, s, params.AnomalyLookbackDays, params.AnomalyThreshold); err != nil {
		return dashboard, fmt.Errorf("failed to build anomalies: %w", err)
	}
	dashboard.Footer = footerNotes(s.ttl, creditPrice)
	return dashboard, nil
}

// shapeTrends turns trend rows into KPI cards. Credits and query counts carry
// a bar sparkline of their most recent days when enough points exist.
func shapeTrends(trends []schema.TrendMetric, credits, queries []schema.DailyMetricPoint) schema.TrendsSection {
	section := schema.TrendsSection{
		Cards:    make([]schema.KPICard, 0, len(trends)),
		Insights: make([]schema.TrendInsight, 0, len(trends)),
		Metrics:  trends,
	}
	if section.Metrics == nil {
		section.Metrics = []schema.TrendMetric{}
	}

	creditSpark := algo.LastN(seriesValues(credits), contract.SparklineDays)
	querySpark := algo.LastN(seriesValues(queries), contract.SparklineDays)

	for _, m := range trends {
		card := schema.KPICard{
			Label:      m.MetricName,
			Value:      algo.FormatMetric(m.MetricName, m.ThisWeekValue),
			RawValue:   m.ThisWeekValue,
			Delta:      algo.FormatDelta(m.ChangePct),
			ChangePct:  m.ChangePct,
			Direction:  algo.DirectionOfImprovement(m.MetricName),
			DeltaColor: algo.DeltaColor(m.MetricName, m.ChangePct),
		}
		var spark []float64
		switch m.MetricName {
		case schema.TotalCreditsMetric:
			spark = creditSpark
		case schema.QueryCountMetric:
			spark = querySpark
		}
		if algo.EligibleForSparkline(spark) {
			card.Sparkline = spark
			card.ChartType = schema.BarChart
		}
		section.Cards = append(section.Cards, card)
		section.Insights = append(section.Insights, schema.TrendInsight{
			MetricName: m.MetricName,
			TrendIcon:  m.TrendIcon,
			Insight:    m.InsightText,
		})
	}
	return section
}

// shapeEfficiency computes the summary and the leading cards of the efficiency section.
func shapeEfficiency(lookbackDays int, records []schema.EfficiencyRecord) schema.EfficiencySection {
	section := schema.EfficiencySection{
		LookbackDays: lookbackDays,
		Cards:        []schema.EfficiencyCard{},
		Records:      records,
	}
	if len(records) == 0 {
		section.Records = []schema.EfficiencyRecord{}
		section.Empty = true
		section.Message = noEfficiencyMessage
		return section
	}

	var total float64
	for _, r := range records {
		total += r.EfficiencyScore
		if r.EfficiencyScore < contract.AttentionScore {
			section.Summary.NeedAttention++
		}
	}
	section.Summary.Analyzed = len(records)
	section.Summary.AverageScore = total / float64(len(records))
	section.Summary.AverageLabel = fmt.Sprintf("%.0f/100", section.Summary.AverageScore)
	if section.Summary.NeedAttention > 0 {
		section.Summary.AttentionNote = fmt.Sprintf("below %d", contract.AttentionScore)
	}

	for _, r := range records[:min(len(records), contract.MaxEfficiencyCards)] {
		card := schema.EfficiencyCard{
			WarehouseName: contract.TruncateName(r.WarehouseName, contract.WarehouseNameWidth),
			Grade:         r.Grade,
			GradeColor:    algo.GradeColor(r.Grade),
			Score:         r.EfficiencyScore,
			CacheScore:    r.CacheScore,
			SpillScore:    r.SpillScore,
			ErrorScore:    r.ErrorScore,
			QueueScore:    r.QueueScore,
		}
		if r.PrimaryIssue != schema.NoPrimaryIssue {
			card.Recommendation = r.Recommendation
		}
		section.Cards = append(section.Cards, card)
	}
	return section
}

// shapeAnomalies annotates the credit series and ranks the anomalies.
// The baseline comes from the first anomaly as returned by the warehouse.
func shapeAnomalies(lookbackDays int, threshold float64, credits []schema.DailyMetricPoint, anomalies []schema.AnomalyRecord) schema.AnomalySection {
	section := schema.AnomalySection{
		LookbackDays: lookbackDays,
		Threshold:    threshold,
		Series:       algo.Annotate(credits, anomalies),
		Ranked:       algo.RankAnomalies(anomalies),
		Cards:        []schema.AnomalyCard{},
	}
	if section.Ranked == nil {
		section.Ranked = []schema.AnomalyRecord{}
	}
	if len(anomalies) == 0 {
		section.Empty = true
		section.Message = fmt.Sprintf(noAnomalyMessage, lookbackDays, threshold)
		return section
	}

	baseline := anomalies[0].BaselineAvg
	section.Baseline = &baseline
	section.Summary = fmt.Sprintf("%d anomalies detected", len(anomalies))
	for _, r := range section.Ranked[:min(len(section.Ranked), contract.MaxAnomalyCards)] {
		section.Cards = append(section.Cards, schema.AnomalyCard{
			Severity: r.Severity,
			Color:    algo.SeverityColor(r.Severity),
			Headline: anomalyHeadline(r),
		})
	}
	return section
}

// anomalyHeadline renders e.g. "Jan 02: 50.0 credits (+120% vs baseline) | Top consumer: WH (30.0 credits)".
func anomalyHeadline(r schema.AnomalyRecord) string {
	return fmt.Sprintf("%s: %.1f credits (%+.0f%% vs baseline) | Top consumer: %s (%.1f credits)",
		r.Date.Format("Jan 02"), r.Value, r.PercentAboveBaseline, r.TopContributorName, r.TopContributorValue)
}

func footerNotes(ttl time.Duration, creditPrice float64) []string {
	return []string{
		fmt.Sprintf(cacheRefreshNote, refreshInterval(ttl)),
		dataLatencyNote,
		fmt.Sprintf("Credit conversion: $%s/credit", algo.FormatMetric("", creditPrice)),
	}
}

// refreshInterval renders whole minutes as "10 minutes" and anything else as a duration.
func refreshInterval(ttl time.Duration) string {
	switch {
	case ttl == time.Minute:
		return "minute"
	case ttl > 0 && ttl%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(ttl/time.Minute))
	default:
		return ttl.String()
	}
}

func seriesValues(points []schema.DailyMetricPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
