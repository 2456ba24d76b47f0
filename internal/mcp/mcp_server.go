// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/snowdash/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the snowdash MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Snowdash Usage Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_trends ---
	s.AddTool(mcp.NewTool("get_trends",
		mcp.WithDescription("Week-over-week KPI trends for credits, query volume, latency, errors and active users."),
	), h.handleGetTrends)

	// --- 2. Tool: get_efficiency_scores ---
	s.AddTool(mcp.NewTool("get_efficiency_scores",
		mcp.WithDescription("Per-warehouse efficiency scores with grades and recommendations."),
		mcp.WithNumber("lookback_days", mcp.Description("Days of history to score (1-30). Defaults to 7.")),
	), h.handleGetEfficiencyScores)

	// --- 3. Tool: get_cost_anomalies ---
	s.AddTool(mcp.NewTool("get_cost_anomalies",
		mcp.WithDescription("Days whose credit spend deviates from the baseline, ranked by severity."),
		mcp.WithNumber("lookback_days", mcp.Description("Days of history to scan (7-90). Defaults to 30.")),
		mcp.WithNumber("threshold", mcp.Description("Z-score threshold (1.5-3.5, step 0.1). Defaults to 2.0.")),
	), h.handleGetCostAnomalies)

	// --- 4. Tool: get_dashboard ---
	s.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("The complete dashboard: trends, efficiency and anomalies in one result."),
		mcp.WithNumber("efficiency_lookback_days", mcp.Description("Efficiency lookback in days (1-30).")),
		mcp.WithNumber("anomaly_lookback_days", mcp.Description("Anomaly lookback in days (7-90).")),
		mcp.WithNumber("threshold", mcp.Description("Anomaly z-score threshold (1.5-3.5).")),
	), h.handleGetDashboard)

	return s
}

// StartMCPServer starts the snowdash MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
