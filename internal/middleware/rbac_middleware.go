package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leavedesk/internal/domain"
	"leavedesk/internal/shared/response"
)

type ContextKey string

const ContextEmployeeID ContextKey = "employee_id"

// RBACService is a local interface; any package with
// Enforce(domain.EnforceRequest) satisfies it.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, ok := c.Get(string(ContextEmployeeID))
		if !ok {
			response.Error(c, http.StatusUnauthorized, "missing auth context")
			c.Abort()
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			EmployeeID: employeeID.(string),
			Resource:   resource,
			Action:     action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, err.Error())
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "you do not have permission: "+resource+":"+action)
			c.Abort()
			return
		}
		c.Next()
	}
}
