package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/clubsphere/clubsphere/internal/app"
	"github.com/clubsphere/clubsphere/internal/handlers"
	iauth "github.com/clubsphere/clubsphere/internal/auth"
	"github.com/clubsphere/clubsphere/internal/middleware"
	"github.com/clubsphere/clubsphere/internal/services"
)

const defaultBasePath = "/api"

// NewRouter builds the Gin engine, wires middleware and registers the club and audit routes.
// Requests reaching the audit middleware are recorded through dispatcher.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, auditSvc *services.AuditService, dispatcher middleware.EntryDispatcher) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if auditSvc == nil {
		return nil, fmt.Errorf("audit service must be provided")
	}

	club, err := services.NewClubServices(db)
	if err != nil {
		return nil, err
	}

	basePath := strings.TrimRight(strings.TrimSpace(cfg.Server.BasePath), "/")
	if basePath == "" {
		basePath = defaultBasePath
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(basePath))
	r.Use(middleware.Metrics(basePath))
	r.Use(middleware.Identify(jwt))
	r.Use(middleware.Audit(middleware.AuditOptions{
		Dispatcher:       dispatcher,
		Snapshotter:      club.Registry,
		BasePath:         basePath,
		ExcludePaths:     cfg.Audit.ExcludePaths,
		ExcludeMethods:   cfg.Audit.ExcludeMethods,
		BodyCaptureLimit: cfg.Audit.BodyCaptureLimit,
	}))

	r.GET("/health", handlers.Health(db))

	api := r.Group(basePath)
	api.Use(middleware.RequireAuth())

	if err := registerAuditRoutes(api, auditSvc); err != nil {
		return nil, err
	}
	if err := registerResourceRoutes(api, club); err != nil {
		return nil, err
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
