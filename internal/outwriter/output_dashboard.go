package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
)

// writeDashboardText renders every section in page order followed by the footer.
func writeDashboardText(w io.Writer, dashboard schema.Dashboard, cfg *contract.Config, duration time.Duration) error {
	title := sectionHeader("❄️", "Snowflake Usage Dashboard", cfg.UseEmojis)
	if _, err := fmt.Fprintf(w, "%s\nGenerated %s\n\n", title, dashboard.GeneratedAt.Format("2006-01-02 15:04 MST")); err != nil {
		return err
	}

	if err := writeTrendsText(w, dashboard.Trends, cfg); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeEfficiencyText(w, dashboard.Efficiency, cfg); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := writeAnomaliesText(w, dashboard.Anomalies, cfg); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, note := range dashboard.Footer {
		if _, err := fmt.Fprintln(w, contract.GetColorLabel(schema.Gray, note, cfg.UseColors)); err != nil {
			return err
		}
	}
	return writeElapsed(w, "Dashboard", cfg, duration)
}

// dashboardSheets returns one sheet per section plus the footer notes.
func dashboardSheets(dashboard schema.Dashboard) []sheet {
	about := sheet{name: "About", header: []string{"key", "value"}}
	about.rows = append(about.rows,
		[]any{"generated_at", dashboard.GeneratedAt.Format(time.RFC3339)},
		[]any{"efficiency_lookback_days", dashboard.Params.EfficiencyLookbackDays},
		[]any{"anomaly_lookback_days", dashboard.Params.AnomalyLookbackDays},
		[]any{"anomaly_threshold", dashboard.Params.AnomalyThreshold},
	)
	for _, note := range dashboard.Footer {
		about.rows = append(about.rows, []any{"note", note})
	}
	return []sheet{
		trendsSheet(dashboard.Trends),
		efficiencySheet(dashboard.Efficiency),
		anomaliesSheet(dashboard.Anomalies),
		seriesSheet(dashboard.Anomalies),
		about,
	}
}
