package cmd

import (
	"github.com/huangsam/snowdash/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Snowdash MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents read warehouse usage.

Tools:
  get_trends            - week-over-week KPI cards
  get_efficiency_scores - warehouse grades (lookback_days)
  get_cost_anomalies    - ranked anomalies (lookback_days, threshold)
  get_dashboard         - every section at once`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}
