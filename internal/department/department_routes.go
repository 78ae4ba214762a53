package department

import (
	"hris/internal/middleware"
	"hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	departments := r.Group("/departments")
	departments.Use(middleware.AuthMiddleware())
	{
		departments.GET("", rbac.Require(rbacService), h.GetAll)
		departments.GET("/:id", rbac.Require(rbacService), h.GetByID)
		departments.POST("", rbac.Require(rbacService, "master.manage"), h.Create)
		departments.PUT("/:id", rbac.Require(rbacService, "master.manage"), h.Update)
		departments.DELETE("/:id", rbac.Require(rbacService, "master.manage"), h.Delete)
	}
}
