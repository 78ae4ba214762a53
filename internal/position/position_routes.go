package position

import (
	"hris/internal/middleware"
	"hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	positions := r.Group("/positions")
	positions.Use(middleware.AuthMiddleware())
	{
		positions.GET("", rbac.Require(rbacService), h.GetAll)
		positions.GET("/:id", rbac.Require(rbacService), h.GetByID)
		positions.POST("", rbac.Require(rbacService, "master.manage"), h.Create)
		positions.PUT("/:id", rbac.Require(rbacService, "master.manage"), h.Update)
		positions.DELETE("/:id", rbac.Require(rbacService, "master.manage"), h.Delete)
	}
}
