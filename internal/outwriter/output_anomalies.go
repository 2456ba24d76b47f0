package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/snowdash/core/algo"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeAnomaliesText renders the cost chart, the anomaly cards and the ranked table.
func writeAnomaliesText(w io.Writer, section schema.AnomalySection, cfg *contract.Config) error {
	title := fmt.Sprintf("Cost Anomalies (last %d days, z-score >= %.1f)", section.LookbackDays, section.Threshold)
	if _, err := fmt.Fprintln(w, sectionHeader("🚨", title, cfg.UseEmojis)); err != nil {
		return err
	}
	if err := writeBarChart(w, section.Series, section.Baseline, cfg); err != nil {
		return err
	}
	if section.Empty {
		_, err := fmt.Fprintln(w, sectionHeader("✅", section.Message, cfg.UseEmojis))
		return err
	}

	if _, err := fmt.Fprintln(w, section.Summary); err != nil {
		return err
	}
	for _, card := range section.Cards {
		tag := contract.GetColorLabel(card.Color, "["+string(card.Severity)+"]", cfg.UseColors)
		if _, err := fmt.Fprintf(w, "  %s %s\n", tag, card.Headline); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Severity", "Credits", "Baseline", "Above", "Z-Score", "Top Warehouse"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, r := range section.Ranked {
		top := r.TopContributorName
		if top != "" {
			top = fmt.Sprintf("%s (%s)", top, formatDecimal(r.TopContributorValue))
		}
		data = append(data, []string{
			schema.DateKey(r.Date),
			contract.GetColorLabel(algo.SeverityColor(r.Severity), string(r.Severity), cfg.UseColors),
			formatDecimal(r.Value),
			formatDecimal(r.BaselineAvg),
			fmt.Sprintf("%+.0f%%", r.PercentAboveBaseline),
			fmt.Sprintf("%.2f", r.ZScore),
			top,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// anomaliesSheet is the tabular form of the ranked anomalies.
func anomaliesSheet(section schema.AnomalySection) sheet {
	s := sheet{
		name: "Anomalies",
		header: []string{
			"usage_date", "severity", "daily_credits", "baseline_avg", "percent_above_baseline",
			"z_score", "top_warehouse", "top_warehouse_credits",
		},
	}
	for _, r := range section.Ranked {
		s.rows = append(s.rows, []any{
			r.Date, string(r.Severity), r.Value, r.BaselineAvg, r.PercentAboveBaseline,
			r.ZScore, r.TopContributorName, r.TopContributorValue,
		})
	}
	return s
}

// seriesSheet is the tabular form of the annotated daily credits.
func seriesSheet(section schema.AnomalySection) sheet {
	s := sheet{
		name:   "Daily Credits",
		header: []string{"usage_date", "daily_credits", "is_anomaly", "severity"},
	}
	for _, p := range section.Series {
		s.rows = append(s.rows, []any{p.Date, p.Value, p.IsAnomaly, string(p.Severity)})
	}
	return s
}
