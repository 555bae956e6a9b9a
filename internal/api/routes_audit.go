package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/handlers"
	"github.com/clubsphere/clubsphere/internal/middleware"
	"github.com/clubsphere/clubsphere/internal/services"
)

const adminRole = "admin"

func registerAuditRoutes(api *gin.RouterGroup, svc *services.AuditService) error {
	auditHandler, err := handlers.NewAuditHandler(svc)
	if err != nil {
		return err
	}

	logs := api.Group("/audit-logs", middleware.RequireRole(adminRole))
	{
		logs.GET("", auditHandler.List)
		logs.GET("/search", auditHandler.Search)
		logs.GET("/export", auditHandler.Export)
		logs.GET("/stats", auditHandler.Stats)
	}
	return nil
}
