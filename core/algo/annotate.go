package algo

import "github.com/huangsam/snowdash/schema"

// Annotate joins a daily series with anomaly records by calendar date.
// The output has one point per input point in the same order. When several
// anomalies share a date the last one in input order wins. Anomalies whose
// date is not in the series are ignored.
func Annotate(points []schema.DailyMetricPoint, anomalies []schema.AnomalyRecord) []schema.AnnotatedSeriesPoint {
	severities := make(map[string]schema.Severity, len(anomalies))
	for _, a := range anomalies {
		severities[schema.DateKey(a.Date)] = a.Severity
	}

	out := make([]schema.AnnotatedSeriesPoint, 0, len(points))
	for _, p := range points {
		point := schema.AnnotatedSeriesPoint{
			Date:     p.Date,
			Value:    p.Value,
			Severity: schema.NormalSeverity,
		}
		if sev, ok := severities[schema.DateKey(p.Date)]; ok && sev != schema.NormalSeverity {
			point.IsAnomaly = true
			point.Severity = sev
		}
		out = append(out, point)
	}
	return out
}
