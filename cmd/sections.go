package cmd

import (
	"github.com/huangsam/snowdash/core"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/spf13/cobra"
)

// trendsCmd shows the week-over-week KPI cards.
var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show week-over-week KPI trends.",
	Long: `Show this week's headline metrics against the previous seven days.

Each metric is colored by whether its change is an improvement: credits,
duration and error rate improve when they fall, while query volume and
active users improve when they rise.

Examples:
  # Show trends as a table
  snowdash trends

  # Export trends for a spreadsheet
  snowdash trends --output csv --output-file trends.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTrends(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show trends", err)
		}
	},
}

// efficiencyCmd shows the warehouse efficiency grades.
var efficiencyCmd = &cobra.Command{
	Use:   "efficiency",
	Short: "Show warehouse efficiency grades.",
	Long: `Score each warehouse on cache use, spilling, errors and queueing.

Warehouses scoring below 70 are counted as needing attention, and the top
cards carry the recommendation for their primary issue.

Examples:
  # Grade the last 14 days
  snowdash efficiency --efficiency-lookback 14

  # Machine-readable output
  snowdash efficiency --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEfficiency(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show efficiency", err)
		}
	},
}

// anomaliesCmd shows the cost anomaly chart and ranking.
var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Show days with anomalous credit spend.",
	Long: `Chart daily credits against their baseline and rank the anomalous days.

Anomalies are ranked by severity (CRITICAL, HIGH, MEDIUM, LOW) and then by
date with the most recent first.

Examples:
  # Scan the default 30 days at z-score 2.0
  snowdash anomalies

  # Scan a quarter with a looser threshold
  snowdash anomalies --anomaly-lookback 90 --anomaly-threshold 1.5`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnomalies(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot show anomalies", err)
		}
	},
}
