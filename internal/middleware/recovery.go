package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clubsphere/clubsphere/pkg/errors"
	"github.com/clubsphere/clubsphere/pkg/logger"
	"github.com/clubsphere/clubsphere/pkg/response"
)

// Recovery turns a handler panic into the standard 500 envelope. The panic value is attached to
// c.Errors so outer middleware can report it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", r),
				zap.Stack("stack"),
			}
			if identity, ok := CurrentIdentity(c); ok {
				fields = append(fields, zap.String("actor_id", identity.UserID))
				if identity.StaffID != "" {
					fields = append(fields, zap.String("staff_id", identity.StaffID))
				}
			}
			logger.WithModule("http").Error("handler panic", fields...)

			_ = c.Error(fmt.Errorf("panic: %v", r))
			response.Error(c, errors.ErrInternalServer)
			c.Abort()
		}()
		c.Next()
	}
}

// NotFoundHandler answers unknown routes with the JSON error envelope.
func NotFoundHandler(c *gin.Context) {
	message := fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path)
	response.Error(c, errors.New(errors.ErrNotFound.Code, message, errors.ErrNotFound.StatusCode))
}
