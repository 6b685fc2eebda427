package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadcrm/internal/auth"
	"leadcrm/pkg/response"
)

// RequireAnyRole allows access if the caller has any of the provided roles.
// Admins pass every check.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			response.Abort(c, http.StatusUnauthorized, "role required")
			return
		}
		if IsAdmin(role) {
			c.Next()
			return
		}
		if _, ok := allowedSet[role]; !ok {
			response.Abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}
