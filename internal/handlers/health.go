package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appErrors "github.com/clubsphere/clubsphere/pkg/errors"
	"github.com/clubsphere/clubsphere/pkg/response"
)

// Health reports readiness. With a database attached the connection is pinged first.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				response.Error(c, appErrors.NewUnavailable("database", err))
				return
			}
			status["database"] = "ok"
		}
		response.Success(c, http.StatusOK, status)
	}
}
