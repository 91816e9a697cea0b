package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rateworks/critica/internal/policy"
)

// RequirePolicy runs the coarse, pre-resource phase of a policy. Object
// ownership is checked in the handlers, after the target is loaded.
func RequirePolicy(p policy.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)

		if !p.HasPermission(user, c.Request.Method) {
			if user == nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Authentication required",
				})
			} else {
				c.JSON(http.StatusForbidden, gin.H{
					"error": "You do not have permission to perform this action",
				})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
