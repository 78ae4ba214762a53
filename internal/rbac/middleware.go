package rbac

import (
	"hris/internal/middleware"
	"hris/internal/shared/apperror"
	"hris/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Require builds a route guard that demands ALL given permission codes.
// With no codes it only checks that the caller is an active, authenticated
// user. Runs after the auth middleware, which sets the user id.
func Require(service Service, codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.ContextUserID)

		if err := service.Authorize(c.Request.Context(), userID, codes...); err != nil {
			httpErr := apperror.ToHTTP(err)
			response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
