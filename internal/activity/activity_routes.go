package activity

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"leavedesk/internal/middleware"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	access middleware.RBACService,
) {
	activity := r.Group("/activity")
	activity.Use(middleware.AuthMiddleware(), middleware.ExtractUserID(), middleware.ContextLogger(zap.L()))
	{
		activity.POST("/work-from-home", handler.SubmitWorkFromHome)
		activity.POST("/partial-day", handler.SubmitPartialDay)
		activity.GET("/requests", handler.GetOwnRequests)

		admin := activity.Group("/admin")
		admin.Use(middleware.RBACAuthorize(access, "activity", "decide"))
		{
			admin.PUT("/requests", handler.Decide)
		}
	}

	// Kept at its historical path for client compatibility.
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware(), middleware.ExtractUserID(), middleware.ContextLogger(zap.L()))
	{
		requests.POST("/regularization", handler.SubmitRegularization)
	}
}
