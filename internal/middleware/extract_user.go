package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leavedesk/internal/shared/response"
)

// ExtractUserID re-sets user_id under a key guaranteed to hold a non-empty
// string, so downstream code can use c.GetString without type checks.
func ExtractUserID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, exists := ctx.Get("user_id")
		if !exists {
			response.Error(ctx, http.StatusUnauthorized, "user is not authenticated")
			ctx.Abort()
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Error(ctx, http.StatusUnauthorized, "invalid user_id format")
			ctx.Abort()
			return
		}

		ctx.Set("user_id_validated", userIDStr)
		ctx.Next()
	}
}
