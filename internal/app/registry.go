package app

import (
	"database/sql"

	"hris/internal/attendance"
	"hris/internal/auth"
	"hris/internal/department"
	"hris/internal/employee"
	"hris/internal/leave"
	"hris/internal/master"
	"hris/internal/messaging/kafka"
	"hris/internal/position"
	"hris/internal/rbac"
	"hris/internal/rbac/infra"
	"hris/internal/shared/sequence"
	"hris/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	positionRepo := position.NewRepository(gormDB)
	masterRepo := master.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	numberGen := sequence.NewEmployeeNumberGenerator(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, rdb)

	// --- Services ---
	authService := auth.NewService(userRepo, rbacService)
	userService := user.NewService(userRepo)
	departmentService := department.NewService(departmentRepo)
	positionService := position.NewService(positionRepo)
	masterService := master.NewService(masterRepo)
	employeeService := employee.NewService(db, employeeRepo, userRepo, numberGen, outboxRepo, rbacService, rdb)
	attendanceService := attendance.NewService(db, attendanceRepo)
	leaveService := leave.NewService(db, leaveRepo, outboxRepo, rbacService)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	rbacHandler := rbac.NewHandler(rbacService)
	departmentHandler := department.NewHandler(departmentService)
	positionHandler := position.NewHandler(positionService)
	masterHandler := master.NewHandler(masterService)
	employeeHandler := employee.NewHandler(employeeService)
	attendanceHandler := attendance.NewHandler(attendanceService)
	leaveHandler := leave.NewHandler(leaveService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		user.RegisterRoutes(api, userHandler, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
		department.RegisterRoutes(api, departmentHandler, rbacService)
		position.RegisterRoutes(api, positionHandler, rbacService)
		master.RegisterRoutes(api, masterHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService)
	}

	return nil
}
