package employee

import (
	"hris/internal/middleware"
	"hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("/me", rbac.Require(rbacService), h.GetMe)
		employees.GET("/options", rbac.Require(rbacService), h.GetOptions)

		employees.GET("", rbac.Require(rbacService, "employees.view"), h.GetAll)
		employees.GET("/:id", rbac.Require(rbacService, "employees.view"), h.GetByID)
		employees.POST("", rbac.Require(rbacService, "employees.manage"), h.Create)
		employees.PUT("/:id", rbac.Require(rbacService, "employees.manage"), h.Update)
		employees.DELETE("/:id", rbac.Require(rbacService, "employees.manage"), h.Delete)
	}
}
