package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/snowdash/core"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleGetTrends(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := core.GetTrendsResults(core.WithSuppressHeader(ctx), h.baseCfg.Clone(), h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trends query failed: %v", err)), nil
	}
	return jsonResult(section)
}

func (h *toolHandler) handleGetEfficiencyScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, "lookback_days", "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid efficiency parameters: %v", err)), nil
	}

	section, err := core.GetEfficiencyResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("efficiency query failed: %v", err)), nil
	}
	return jsonResult(section)
}

func (h *toolHandler) handleGetCostAnomalies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, "", "lookback_days")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid anomaly parameters: %v", err)), nil
	}

	section, err := core.GetAnomalyResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("anomaly query failed: %v", err)), nil
	}
	return jsonResult(section)
}

func (h *toolHandler) handleGetDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request, "efficiency_lookback_days", "anomaly_lookback_days")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid dashboard parameters: %v", err)), nil
	}

	dashboard, err := core.GetDashboardResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dashboard build failed: %v", err)), nil
	}
	return jsonResult(dashboard)
}

// configFor clones the base config with the tool arguments applied and re-validated.
// An empty argument name leaves that lookback at its configured value.
func (h *toolHandler) configFor(request mcp.CallToolRequest, efficiencyArg, anomalyArg string) (*contract.Config, error) {
	base := h.baseCfg.Params
	efficiencyDays, anomalyDays := base.EfficiencyLookbackDays, base.AnomalyLookbackDays
	if efficiencyArg != "" {
		efficiencyDays = request.GetInt(efficiencyArg, efficiencyDays)
	}
	if anomalyArg != "" {
		anomalyDays = request.GetInt(anomalyArg, anomalyDays)
	}
	threshold := request.GetFloat("threshold", base.AnomalyThreshold)

	params, err := contract.ValidateParams(efficiencyDays, anomalyDays, threshold)
	if err != nil {
		return nil, err
	}
	return h.baseCfg.CloneWithParams(params), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
