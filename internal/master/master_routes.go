package master

import (
	"hris/internal/middleware"
	"hris/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	grades := r.Group("/grades")
	grades.Use(middleware.AuthMiddleware())
	{
		grades.GET("", rbac.Require(rbacService), h.GetAllGrades)
		grades.POST("", rbac.Require(rbacService, "master.manage"), h.CreateGrade)
		grades.PUT("/:id", rbac.Require(rbacService, "master.manage"), h.UpdateGrade)
		grades.DELETE("/:id", rbac.Require(rbacService, "master.manage"), h.DeleteGrade)
	}

	statuses := r.Group("/employment-statuses")
	statuses.Use(middleware.AuthMiddleware())
	{
		statuses.GET("", rbac.Require(rbacService), h.GetAllEmploymentStatuses)
		statuses.POST("", rbac.Require(rbacService, "master.manage"), h.CreateEmploymentStatus)
		statuses.PUT("/:id", rbac.Require(rbacService, "master.manage"), h.UpdateEmploymentStatus)
		statuses.DELETE("/:id", rbac.Require(rbacService, "master.manage"), h.DeleteEmploymentStatus)
	}
}
