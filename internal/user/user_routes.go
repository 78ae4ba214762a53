package user

import (
	"hris/internal/middleware"
	"hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("", rbac.Require(rbacService, "users.manage"), h.GetAll)
		users.GET("/:id", rbac.Require(rbacService, "users.manage"), h.GetByID)
		users.POST("", rbac.Require(rbacService, "users.manage"), h.Create)
		users.PUT("/:id", rbac.Require(rbacService, "users.manage"), h.Update)
		users.DELETE("/:id", rbac.Require(rbacService, "users.manage"), h.Delete)
		users.POST("/:id/reset-password", rbac.Require(rbacService, "users.manage"), h.ResetPassword)
		users.POST("/change-password", rbac.Require(rbacService), h.ChangePassword)
	}
}
