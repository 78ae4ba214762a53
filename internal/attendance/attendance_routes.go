package attendance

import (
	"hris/internal/middleware"
	"hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	attendances := r.Group("/attendances")
	attendances.Use(middleware.AuthMiddleware())
	{
		attendances.POST("/check-in", rbac.Require(rbacService), h.CheckIn)
		attendances.POST("/check-out", rbac.Require(rbacService), h.CheckOut)
		attendances.GET("/me", rbac.Require(rbacService), h.ListMine)
		attendances.GET("", rbac.Require(rbacService, "attendance.view_all"), h.ListAll)
	}

	settings := r.Group("/attendance-settings")
	settings.Use(middleware.AuthMiddleware())
	{
		settings.GET("", rbac.Require(rbacService, "attendance.manage_settings"), h.GetAllSettings)
		settings.POST("", rbac.Require(rbacService, "attendance.manage_settings"), h.CreateSetting)
		settings.PUT("/:id", rbac.Require(rbacService, "attendance.manage_settings"), h.UpdateSetting)
		settings.DELETE("/:id", rbac.Require(rbacService, "attendance.manage_settings"), h.DeleteSetting)
		settings.POST("/:id/activate", rbac.Require(rbacService, "attendance.manage_settings"), h.ActivateSetting)
	}
}
