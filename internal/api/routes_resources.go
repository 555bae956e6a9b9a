package api

import (
	"github.com/gin-gonic/gin"

	"github.com/clubsphere/clubsphere/internal/handlers"
	"github.com/clubsphere/clubsphere/internal/middleware"
	"github.com/clubsphere/clubsphere/internal/services"
)

const staffRole = "staff"

func registerResourceRoutes(api *gin.RouterGroup, club *services.ClubServices) error {
	if err := mountResource(api.Group("/members"), club.Members, adminRole, staffRole); err != nil {
		return err
	}
	if err := mountResource(api.Group("/bookings"), club.Bookings, adminRole, staffRole); err != nil {
		return err
	}
	if err := mountResource(api.Group("/staff"), club.Staff, adminRole); err != nil {
		return err
	}
	if err := mountResource(api.Group("/users", middleware.RequireRole(adminRole)), club.Users, adminRole); err != nil {
		return err
	}
	if err := mountResource(api.Group("/masters/batch"), club.Batches, adminRole); err != nil {
		return err
	}
	return mountResource(api.Group("/biometric/attendance"), club.Attendance, adminRole, staffRole)
}

// mountResource registers list/get for any authenticated identity and writes for writeRoles.
func mountResource[T any, PT interface {
	*T
	services.Identifiable
}](group *gin.RouterGroup, svc *services.ResourceService[T, PT], writeRoles ...string) error {
	handler, err := handlers.NewResourceHandler(svc)
	if err != nil {
		return err
	}

	canWrite := middleware.RequireRole(writeRoles...)
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", canWrite, handler.Create)
	group.PUT("/:id", canWrite, handler.Update)
	group.PATCH("/:id", canWrite, handler.Update)
	group.DELETE("/:id", canWrite, handler.Delete)
	return nil
}
