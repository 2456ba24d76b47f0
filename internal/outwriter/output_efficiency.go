package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeEfficiencyText renders the summary line, the card table and the full records table.
func writeEfficiencyText(w io.Writer, section schema.EfficiencySection, cfg *contract.Config) error {
	title := fmt.Sprintf("Warehouse Efficiency (last %d days)", section.LookbackDays)
	if _, err := fmt.Fprintln(w, sectionHeader("⚙️", title, cfg.UseEmojis)); err != nil {
		return err
	}
	if section.Empty {
		_, err := fmt.Fprintln(w, section.Message)
		return err
	}

	summary := section.Summary
	attention := fmt.Sprintf("%d", summary.NeedAttention)
	if summary.AttentionNote != "" {
		attention += " (" + summary.AttentionNote + ")"
	}
	if _, err := fmt.Fprintf(w, "Average score: %s | Warehouses analyzed: %d | Need attention: %s\n",
		summary.AverageLabel, summary.Analyzed, attention); err != nil {
		return err
	}

	cards := tablewriter.NewWriter(w)
	cards.Header([]string{"Warehouse", "Grade", "Score", "Cache", "Spill", "Error", "Queue", "Recommendation"})
	cards.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, c := range section.Cards {
		data = append(data, []string{
			c.WarehouseName,
			contract.GetColorLabel(c.GradeColor, string(c.Grade), cfg.UseColors),
			fmt.Sprintf("%.0f", c.Score),
			fmt.Sprintf("%.0f", c.CacheScore),
			fmt.Sprintf("%.0f", c.SpillScore),
			fmt.Sprintf("%.0f", c.ErrorScore),
			fmt.Sprintf("%.0f", c.QueueScore),
			c.Recommendation,
		})
	}
	if err := cards.Bulk(data); err != nil {
		return err
	}
	if err := cards.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "All warehouses:"); err != nil {
		return err
	}
	records := tablewriter.NewWriter(w)
	records.Header([]string{"Warehouse", "Queries", "Score", "Grade", "Primary Issue"})
	records.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data = data[:0]
	for _, r := range section.Records {
		data = append(data, []string{
			r.WarehouseName,
			formatCount(r.QueryCount),
			fmt.Sprintf("%.1f", r.EfficiencyScore),
			string(r.Grade),
			r.PrimaryIssue,
		})
	}
	if err := records.Bulk(data); err != nil {
		return err
	}
	return records.Render()
}

// efficiencySheet is the tabular form of the efficiency records.
func efficiencySheet(section schema.EfficiencySection) sheet {
	s := sheet{
		name: "Efficiency",
		header: []string{
			"warehouse_name", "query_count", "efficiency_score", "grade", "cache_score",
			"spill_score", "error_score", "queue_score", "primary_issue", "recommendation",
		},
	}
	for _, r := range section.Records {
		s.rows = append(s.rows, []any{
			r.WarehouseName, r.QueryCount, r.EfficiencyScore, string(r.Grade), r.CacheScore,
			r.SpillScore, r.ErrorScore, r.QueueScore, r.PrimaryIssue, r.Recommendation,
		})
	}
	return s
}
