package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"leavedesk/internal/activity"
	"leavedesk/internal/balance"
	"leavedesk/internal/employee"
	"leavedesk/internal/leave"
	"leavedesk/internal/messaging/kafka"
	"leavedesk/internal/policy"
	"leavedesk/internal/rbac"
	"leavedesk/internal/rbac/infra"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(db)
	balanceRepo := balance.NewRepository(db)
	activityRepo := activity.NewRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Policy ---
	policyCfg := policy.Default()

	// --- Services ---
	leaveService := leave.NewService(db, leaveRepo, balanceRepo, employeeRepo, outboxRepo, rbacService, policyCfg, rdb)
	activityService := activity.NewService(db, activityRepo, outboxRepo, rbacService, policyCfg)

	// --- Handlers ---
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)
	activityHandler := activity.NewHandler(activityService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, rdb)
		activity.RegisterRoutes(api, activityHandler, rbacService)
	}

	return nil
}
