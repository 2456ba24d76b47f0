package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/snowdash/core"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/metrics"
	"github.com/huangsam/snowdash/internal/traces"
	"github.com/huangsam/snowdash/schema"
)

// Query parameter names.
const (
	lookbackParam           = "lookback_days"
	efficiencyLookbackParam = "efficiency_lookback_days"
	anomalyLookbackParam    = "anomaly_lookback_days"
	thresholdParam          = "threshold"
)

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) pageHandler(c *gin.Context) {
	params, err := s.queryParams(c, efficiencyLookbackParam, anomalyLookbackParam)
	if err != nil {
		s.renderErrorPage(c, err)
		return
	}
	dashboard, err := s.buildDashboard(c, params)
	if err != nil {
		s.renderErrorPage(c, err)
		return
	}
	c.HTML(http.StatusOK, "dashboard", newPageView(dashboard, s.cfg))
}

func (s *Server) dashboardHandler(c *gin.Context) {
	params, err := s.queryParams(c, efficiencyLookbackParam, anomalyLookbackParam)
	if err != nil {
		respondError(c, err)
		return
	}
	dashboard, err := s.buildDashboard(c, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (s *Server) trendsHandler(c *gin.Context) {
	ctx, span := traces.StartSpan(c.Request.Context(), "http.trends")
	defer span.End()

	section, err := core.BuildTrendsSection(ctx, s.session)
	if err != nil {
		traces.Fail(span, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (s *Server) efficiencyHandler(c *gin.Context) {
	params, err := s.queryParams(c, lookbackParam, "")
	if err != nil {
		respondError(c, err)
		return
	}
	ctx, span := traces.StartSpan(c.Request.Context(), "http.efficiency")
	defer span.End()

	section, err := core.BuildEfficiencySection(ctx, s.session, params.EfficiencyLookbackDays)
	if err != nil {
		traces.Fail(span, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (s *Server) anomaliesHandler(c *gin.Context) {
	params, err := s.queryParams(c, "", lookbackParam)
	if err != nil {
		respondError(c, err)
		return
	}
	ctx, span := traces.StartSpan(c.Request.Context(), "http.anomalies")
	defer span.End()

	section, err := core.BuildAnomalySection(ctx, s.session, params.AnomalyLookbackDays, params.AnomalyThreshold)
	if err != nil {
		traces.Fail(span, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (s *Server) buildDashboard(c *gin.Context, params schema.DashboardParams) (schema.Dashboard, error) {
	ctx, span := traces.StartSpan(c.Request.Context(), "http.dashboard")
	defer span.End()

	dashboard, err := core.BuildDashboard(ctx, s.session, params, s.cfg.CreditPrice)
	metrics.ObserveDashboardBuild(err)
	if err != nil {
		traces.Fail(span, err)
	}
	return dashboard, err
}

// queryParams overlays query parameters on the configured defaults and validates them
// with the same bounds as the CLI. An empty key leaves that lookback at its default.
func (s *Server) queryParams(c *gin.Context, efficiencyKey, anomalyKey string) (schema.DashboardParams, error) {
	defaults := s.cfg.Params
	efficiencyDays, err := intQuery(c, efficiencyKey, defaults.EfficiencyLookbackDays)
	if err != nil {
		return schema.DashboardParams{}, err
	}
	anomalyDays, err := intQuery(c, anomalyKey, defaults.AnomalyLookbackDays)
	if err != nil {
		return schema.DashboardParams{}, err
	}
	threshold := defaults.AnomalyThreshold
	if raw, ok := c.GetQuery(thresholdParam); ok {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return schema.DashboardParams{}, fmt.Errorf("%w: %s must be a number (received %q)", contract.ErrInvalidParams, thresholdParam, raw)
		}
	}
	return contract.ValidateParams(efficiencyDays, anomalyDays, threshold)
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	if key == "" {
		return fallback, nil
	}
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer (received %q)", contract.ErrInvalidParams, key, raw)
	}
	return v, nil
}

// statusFor maps validation failures to 400 and everything else to a warehouse failure.
func statusFor(err error) (int, string) {
	if errors.Is(err, contract.ErrInvalidParams) {
		return http.StatusBadRequest, "invalid_params"
	}
	return http.StatusBadGateway, "warehouse_error"
}

func respondError(c *gin.Context, err error) {
	code, kind := statusFor(err)
	c.JSON(code, gin.H{"error": kind, "message": err.Error()})
}

func (s *Server) renderErrorPage(c *gin.Context, err error) {
	code, _ := statusFor(err)
	c.HTML(code, "error", gin.H{"Status": code, "Message": err.Error()})
}
