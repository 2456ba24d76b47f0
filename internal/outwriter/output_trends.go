package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeTrendsText renders the KPI cards as a table followed by the insights.
func writeTrendsText(w io.Writer, section schema.TrendsSection, cfg *contract.Config) error {
	if _, err := fmt.Fprintln(w, sectionHeader("📈", "Week-over-Week Trends", cfg.UseEmojis)); err != nil {
		return err
	}
	if len(section.Cards) == 0 {
		_, err := fmt.Fprintln(w, "No trend data available.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "This Week", "Change", "Last 7 Days"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignRight, tw.AlignLeft}
	})

	var data [][]string
	for _, card := range section.Cards {
		data = append(data, []string{
			card.Label,
			card.Value,
			contract.GetColorLabel(card.DeltaColor, card.Delta, cfg.UseColors),
			Sparkline(card.Sparkline),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, insight := range section.Insights {
		if insight.Insight == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s %s: %s\n", insight.TrendIcon, insight.MetricName, insight.Insight); err != nil {
			return err
		}
	}
	return nil
}

// trendsSheet is the tabular form of the trend rows.
func trendsSheet(section schema.TrendsSection) sheet {
	s := sheet{
		name:   "Trends",
		header: []string{"metric_name", "this_week_value", "change_pct", "direction", "trend_icon", "insight"},
	}
	for i, m := range section.Metrics {
		direction := ""
		if i < len(section.Cards) {
			direction = string(section.Cards[i].Direction)
		}
		s.rows = append(s.rows, []any{m.MetricName, m.ThisWeekValue, m.ChangePct, direction, m.TrendIcon, m.InsightText})
	}
	return s
}
