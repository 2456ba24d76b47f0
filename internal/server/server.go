// Package server serves the dashboard over HTTP: an HTML page, a JSON API and Prometheus metrics.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/snowdash/core"
	"github.com/huangsam/snowdash/internal/contract"
	"github.com/huangsam/snowdash/internal/metrics"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// shutdownTimeout bounds how long in-flight requests may take once the server stops.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP dashboard bound to one warehouse session.
type Server struct {
	cfg     *contract.Config
	session *core.Session
	router  *gin.Engine
	httpSrv *http.Server
}

// New builds the router for the given session. The session is shared by all requests
// so the query cache serves repeated page loads.
func New(cfg *contract.Config, session *core.Session) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{cfg: cfg, session: session}
	s.router = gin.New()
	s.router.SetHTMLTemplate(tmpl)
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		contract.LogWarn("Recovered from panic in "+c.Request.URL.Path, fmt.Errorf("%v", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))
	s.router.Use(metrics.Middleware())
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthHandler)
	s.router.GET("/metrics", metrics.Handler())

	s.router.GET("/", s.pageHandler)

	api := s.router.Group("/api")
	api.GET("/dashboard", s.dashboardHandler)
	api.GET("/trends", s.trendsHandler)
	api.GET("/efficiency", s.efficiencyHandler)
	api.GET("/anomalies", s.anomaliesHandler)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		contract.LogInfo("🌐", fmt.Sprintf("Serving dashboard on %s", s.cfg.ListenAddr), s.cfg.UseEmojis)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
