package rbac

import (
	"hris/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, service Service) {
	roles := r.Group("/roles")
	roles.Use(middleware.AuthMiddleware())
	{
		roles.GET("", Require(service, "roles.view"), h.ListRoles)
		roles.GET("/:id", Require(service, "roles.view"), h.GetRole)
		roles.POST("", Require(service, "roles.manage"), h.CreateRole)
		roles.PUT("/:id", Require(service, "roles.manage"), h.UpdateRole)
		roles.DELETE("/:id", Require(service, "roles.manage"), h.DeleteRole)
		roles.POST("/:id/permissions", Require(service, "roles.manage"), h.AssignPermissions)
		roles.DELETE("/:id/permissions", Require(service, "roles.manage"), h.RemovePermissions)
	}

	permissions := r.Group("/permissions")
	permissions.Use(middleware.AuthMiddleware())
	{
		permissions.GET("", Require(service, "roles.view"), h.ListPermissions)
		permissions.POST("", Require(service, "roles.manage"), h.CreatePermission)
		permissions.PUT("/:id", Require(service, "roles.manage"), h.UpdatePermission)
		permissions.DELETE("/:id", Require(service, "roles.manage"), h.DeletePermission)
	}

	users := r.Group("/user-roles")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("", Require(service, "roles.manage"), h.ListUsers)
		users.GET("/:id", Require(service, "roles.manage"), h.GetUserRoles)
		users.POST("/:id/roles", Require(service, "roles.manage"), h.AssignRoles)
		users.DELETE("/:id/roles", Require(service, "roles.manage"), h.RemoveRoles)
	}
}
