package leave

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"leavedesk/internal/middleware"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(), middleware.ExtractUserID(), middleware.ContextLogger(zap.L()))
	{
		// Every authenticated employee may file and read; ownership and
		// elevated-role rules are enforced in the service, because the
		// same route carries owner cancels and admin approvals.
		leaves.POST("", middleware.Idempotency(rdb), handler.Create)
		leaves.GET("", handler.GetAll)
		leaves.GET("/balance", handler.GetBalance)
		leaves.GET("/:id", handler.GetByID)
		leaves.PUT("/:id", handler.UpdateStatus)
	}
}
