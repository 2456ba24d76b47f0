package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/snowdash/core"
	"github.com/huangsam/snowdash/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP.",
	Long: `Start an HTTP server with the dashboard page and its JSON API.

Routes:
  GET /                 - HTML dashboard (accepts efficiency_lookback_days, anomaly_lookback_days, threshold)
  GET /api/dashboard    - all sections as JSON
  GET /api/trends       - KPI cards and insights
  GET /api/efficiency   - warehouse grades (lookback_days)
  GET /api/anomalies    - anomaly chart and ranking (lookback_days, threshold)
  GET /healthz          - liveness probe
  GET /metrics          - Prometheus metrics

All requests share one warehouse connection and one query cache, so a page
refresh inside --cache-ttl never reaches the warehouse.

Examples:
  # Serve on the default :8080
  snowdash serve

  # Serve on a different address with a shared SQLite cache
  snowdash serve --listen-addr 127.0.0.1:9090 --cache-backend sqlite`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

// runServer opens a long-lived session and serves until ctx is cancelled.
func runServer(ctx context.Context) error {
	session, err := core.OpenSession(ctx, cfg, cacheManager)
	if err != nil {
		return fmt.Errorf("failed to open warehouse session: %w", err)
	}
	defer func() { _ = session.Close() }()

	srv, err := server.New(cfg, session)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
