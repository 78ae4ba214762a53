package leave

import (
	"hris/internal/middleware"
	"hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	types := r.Group("/leave-types")
	types.Use(middleware.AuthMiddleware())
	{
		types.GET("", rbac.Require(rbacService), h.GetAllTypes)
		types.POST("", rbac.Require(rbacService, "leave.manage_types"), h.CreateType)
		types.PUT("/:id", rbac.Require(rbacService, "leave.manage_types"), h.UpdateType)
		types.DELETE("/:id", rbac.Require(rbacService, "leave.manage_types"), h.DeleteType)
	}

	requests := r.Group("/leave-requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", rbac.Require(rbacService), h.Submit)
		requests.GET("/me", rbac.Require(rbacService), h.ListMine)
		requests.GET("", rbac.Require(rbacService, "leave.view_all"), h.ListAll)
		requests.GET("/:id", rbac.Require(rbacService), h.GetByID)

		requests.POST("/:id/approve", rbac.Require(rbacService, "leave.approve"), h.Approve)
		requests.POST("/:id/reject", rbac.Require(rbacService, "leave.approve"), h.Reject)
		requests.POST("/bulk-approve", rbac.Require(rbacService, "leave.approve"), h.BulkApprove)
		requests.POST("/bulk-reject", rbac.Require(rbacService, "leave.approve"), h.BulkReject)
	}
}
