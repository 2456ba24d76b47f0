package cmd

import (
	"github.com/huangsam/snowdash/core"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/spf13/cobra"
)

// dashboardCmd renders every section at once.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render the full usage dashboard.",
	Long: `Query the warehouse and render trends, efficiency and cost anomalies together.

Sections:
- Week-over-week KPI cards with sparklines for credits and query volume
- Warehouse efficiency grades with the warehouses needing attention
- Daily credit chart with anomalous days highlighted by severity

Results are cached for --cache-ttl (10 minutes by default), so re-running the
dashboard right away does not hit the warehouse again. When --snapshot-backend
is set, every render is also recorded for later export.

Output formats: text (default), json, xlsx (requires --output-file).

Examples:
  # Render with defaults
  snowdash dashboard

  # Look further back for anomalies with a stricter threshold
  snowdash dashboard --anomaly-lookback 60 --anomaly-threshold 2.5

  # Save a workbook for the weekly review
  snowdash dashboard --output xlsx --output-file usage.xlsx`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDashboard(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot render dashboard", err)
		}
	},
}
